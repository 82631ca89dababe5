// Package drops models the drops document: the flat list of free game
// offers the scraper pipeline writes, one record per storefront offer.
package drops

import (
	"encoding/json"
	"strings"
)

// Drop is one free game offer. Link may be empty when a storefront offers
// no stable claim URL, in which case Cta carries the instruction shown
// instead of a link.
type Drop struct {
	Platform string `json:"platform"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Banner   string `json:"banner"`
	Link     string `json:"link"`
	Cta      string `json:"cta,omitempty"`
}

// ParseDrops decodes the drops document body, preserving document order.
// An empty or malformed body yields an empty list rather than an error,
// matching the subscriber document's self-healing decode: a bad scraper
// write produces an empty digest, not a wedged dispatcher. Records without
// a title are dropped.
func ParseDrops(body []byte) []Drop {
	var decoded []Drop
	if err := json.Unmarshal(body, &decoded); err != nil {
		return []Drop{}
	}

	drops := make([]Drop, 0, len(decoded))
	for _, d := range decoded {
		if strings.TrimSpace(d.Title) != "" {
			drops = append(drops, d)
		}
	}
	return drops
}

// Expired reports whether the offer is no longer claimable. The scraper
// marks these explicitly so a disappearing offer can still be announced
// once before it leaves the document.
func (d *Drop) Expired() bool {
	return strings.EqualFold(strings.TrimSpace(d.Status), "Expired")
}

// Ending reports whether the offer carries an expiry notice in its status,
// such as "Ends Aug 31" or "Fresh Drop (Expires in 2 days)".
func (d *Drop) Ending() bool {
	status := strings.ToLower(d.Status)
	return strings.Contains(status, "ends") ||
		strings.Contains(status, "expires")
}

// Digest is the categorized view of the drops document used to build
// notification content. Expired offers are filtered out entirely.
type Digest struct {
	New    []Drop
	Ending []Drop
}

func NewDigest(drops []Drop) *Digest {
	digest := &Digest{New: []Drop{}, Ending: []Drop{}}

	for _, d := range drops {
		if d.Expired() {
			continue
		} else if d.Ending() {
			digest.Ending = append(digest.Ending, d)
		} else {
			digest.New = append(digest.New, d)
		}
	}
	return digest
}

// Kind selects which categories a notification run covers. Alert runs
// announce only newly listed offers; recap runs cover everything still
// claimable, including offers about to end.
type Kind string

const (
	KindAlert Kind = "alert"
	KindRecap Kind = "recap"
)

// Select returns the offers covered by the given run kind, new offers
// first. An empty result means the run has nothing to announce.
func (digest *Digest) Select(kind Kind) []Drop {
	selected := make([]Drop, 0, len(digest.New)+len(digest.Ending))
	selected = append(selected, digest.New...)

	if kind == KindRecap {
		selected = append(selected, digest.Ending...)
	}
	return selected
}
