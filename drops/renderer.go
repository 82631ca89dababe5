package drops

import (
	"fmt"
	"html"
	"strings"

	"github.com/gamedrops/droplist/email"
)

// Renderer builds the notification message for a set of selected drops.
// Sender and Subject become the message's From and Subject headers;
// DashboardLink appears in both footers above the unsubscribe link.
type Renderer struct {
	Sender        string
	Subject       string
	DashboardLink string
}

// Render produces the message for one notification run, or nil when the
// digest has nothing to announce for that run kind. Offers are grouped by
// platform in order of first appearance, matching the drops document.
func (r *Renderer) Render(digest *Digest, kind Kind) *email.Message {
	selected := digest.Select(kind)
	if len(selected) == 0 {
		return nil
	}

	subject := r.Subject
	if kind == KindRecap {
		subject += " (weekly recap)"
	}

	return &email.Message{
		From:       r.Sender,
		Subject:    subject,
		TextBody:   renderText(selected),
		TextFooter: r.textFooter(),
		HtmlBody:   renderHtml(selected),
		HtmlFooter: r.htmlFooter(),
	}
}

func (r *Renderer) textFooter() string {
	return "\nView all current drops: " + r.DashboardLink +
		"\n\nTo unsubscribe, visit: " + email.UnsubscribeUrlTemplate + "\n"
}

func (r *Renderer) htmlFooter() string {
	return `<hr/><p><a href="` + html.EscapeString(r.DashboardLink) +
		`">View all current drops</a></p><p><a href="` +
		email.UnsubscribeUrlTemplate +
		`">Unsubscribe</a></p></body></html>` + "\n"
}

// groupByPlatform preserves the order platforms first appear in the
// document so renderings stay stable across runs.
func groupByPlatform(selected []Drop) (platforms []string, groups map[string][]Drop) {
	groups = make(map[string][]Drop, len(selected))

	for _, d := range selected {
		platform := d.Platform
		if platform == "" {
			platform = "Other"
		}
		if _, seen := groups[platform]; !seen {
			platforms = append(platforms, platform)
		}
		groups[platform] = append(groups[platform], d)
	}
	return
}

func renderText(selected []Drop) string {
	platforms, groups := groupByPlatform(selected)
	sb := &strings.Builder{}

	for _, platform := range platforms {
		fmt.Fprintf(sb, "%s\n", platform)
		for _, d := range groups[platform] {
			fmt.Fprintf(sb, "- %s (%s)\n", d.Title, d.Status)
			if d.Link != "" {
				fmt.Fprintf(sb, "  %s\n", d.Link)
			} else if d.Cta != "" {
				fmt.Fprintf(sb, "  %s\n", d.Cta)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderHtml(selected []Drop) string {
	platforms, groups := groupByPlatform(selected)
	sb := &strings.Builder{}
	sb.WriteString("<!DOCTYPE html><html><head></head>")
	sb.WriteString(`<body style="font-family:Segoe UI,Arial;padding:8px">`)

	for _, platform := range platforms {
		fmt.Fprintf(sb, "<h2>%s</h2><ul>", html.EscapeString(platform))
		for _, d := range groups[platform] {
			sb.WriteString("<li>")
			if d.Banner != "" {
				fmt.Fprintf(
					sb,
					`<img src="%s" alt="" style="max-width:220px"/>`,
					html.EscapeString(d.Banner),
				)
			}
			if d.Link != "" {
				fmt.Fprintf(
					sb,
					`<a href="%s"><strong>%s</strong></a> (%s)`,
					html.EscapeString(d.Link),
					html.EscapeString(d.Title),
					html.EscapeString(d.Status),
				)
			} else {
				fmt.Fprintf(
					sb,
					"<strong>%s</strong> (%s)",
					html.EscapeString(d.Title),
					html.EscapeString(d.Status),
				)
				if d.Cta != "" {
					fmt.Fprintf(sb, " <em>%s</em>", html.EscapeString(d.Cta))
				}
			}
			sb.WriteString("</li>")
		}
		sb.WriteString("</ul>")
	}
	return sb.String()
}
