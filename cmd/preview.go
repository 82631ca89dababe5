package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gamedrops/droplist/drops"
	"github.com/gamedrops/droplist/email"
	"github.com/spf13/cobra"
)

const exampleDropsJson = `  [
    {
      "platform": "Epic Games Store",
      "title": "Ghost of a Tale",
      "status": "Fresh Drop",
      "banner": "https://cdn.example.com/ghost.jpg",
      "link": "https://store.epicgames.com/p/ghost-of-a-tale"
    },
    {
      "platform": "Prime Gaming",
      "title": "Deep Rock Galactic",
      "status": "Ends Sep 4",
      "banner": "",
      "link": "https://gaming.amazon.com/deep-rock"
    }
  ]`

var previewFlags = struct {
	emitExample   bool
	kind          string
	sender        string
	subject       string
	dashboardLink string
}{}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the digest for a drops document without sending it",
	Long: `Reads a drops document from standard input, a JSON list of offers:

` + exampleDropsJson + `

It renders the digest for the requested run kind and emits the raw email
message that each subscriber would receive, using a placeholder recipient.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var input io.Reader = os.Stdin
		if previewFlags.emitExample {
			input = strings.NewReader(exampleDropsJson)
		}
		return emitPreview(cmd.OutOrStdout(), input)
	},
}

func init() {
	flags := previewCmd.Flags()
	flags.BoolVarP(
		&previewFlags.emitExample, "example", "x", false,
		"Use the help example to generate the preview",
	)
	flags.StringVarP(
		&previewFlags.kind, FlagKind, "k", string(drops.KindRecap),
		`notification run kind, "alert" or "recap"`,
	)
	flags.StringVar(
		&previewFlags.sender, "sender",
		"Droplist Updates <updates@example.com>", "From address",
	)
	flags.StringVar(
		&previewFlags.subject, "subject", "New free games", "Subject line",
	)
	flags.StringVar(
		&previewFlags.dashboardLink, "dashboard-link",
		"https://example.com/dashboard.html", "dashboard URL for the footers",
	)
	rootCmd.AddCommand(previewCmd)
}

func emitPreview(output io.Writer, input io.Reader) error {
	body, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("failed to read drops document: %s", err)
	}

	renderer := &drops.Renderer{
		Sender:        previewFlags.sender,
		Subject:       previewFlags.subject,
		DashboardLink: previewFlags.dashboardLink,
	}
	digest := drops.NewDigest(drops.ParseDrops(body))
	msg := renderer.Render(digest, drops.Kind(previewFlags.kind))

	if msg == nil {
		return fmt.Errorf("nothing to announce for a %s run", previewFlags.kind)
	}

	template, err := email.ConvertToTemplate(msg)
	if err != nil {
		return err
	}
	return template.EmitMessage(output, email.ExampleRecipient)
}
