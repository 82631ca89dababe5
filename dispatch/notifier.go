package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/gamedrops/droplist/drops"
	"github.com/gamedrops/droplist/store"
)

// Notifier runs one full notification pass: read the drops document, build
// the digest for the run kind, and dispatch the rendered message.
type Notifier struct {
	Store      store.DocumentStore
	DropsPath  string
	Renderer   *drops.Renderer
	Dispatcher *Dispatcher
	Log        *log.Logger
}

// Notify dispatches the digest for one run kind. A missing or empty drops
// document is not an error; the run simply has nothing to announce and the
// report shows zero attempts.
func (n *Notifier) Notify(
	ctx context.Context, kind drops.Kind,
) (report *BatchReport, err error) {
	doc, err := n.Store.Get(ctx, n.DropsPath)

	if errors.Is(err, store.ErrDocumentNotFound) {
		doc, err = &store.Document{}, nil
	} else if err != nil {
		err = fmt.Errorf("failed to read drops: %w", err)
		return
	}

	digest := drops.NewDigest(drops.ParseDrops(doc.Body))
	n.Log.Printf(
		"%s run: %d new, %d ending", kind, len(digest.New), len(digest.Ending),
	)
	return n.Dispatcher.Dispatch(ctx, n.Renderer.Render(digest, kind))
}
