package store

import (
	"context"

	"github.com/gamedrops/droplist/types"
)

// ErrDocumentNotFound indicates the document path has never been written.
// Callers that maintain documents should treat it as an empty document.
const ErrDocumentNotFound = types.SentinelError("document not found")

// ErrVersionConflict is the store's signal that a Put presented a version
// token that no longer matches the current document. It's the only error
// worth retrying: re-read the document and try again with the fresh token.
const ErrVersionConflict = types.SentinelError("document version conflict")

// Document is one versioned blob from a DocumentStore.
type Document struct {
	Body []byte

	// Token identifies the version of the document Body was read from. It's
	// opaque to everything except the store that issued it.
	Token string
}

// DocumentStore provides optimistic concurrency control over named
// documents. There are no transactions and no locks; Put is the single
// serialization point.
type DocumentStore interface {
	// Get returns the current document and its version token. Returns
	// ErrDocumentNotFound if path has never been created.
	Get(ctx context.Context, path string) (*Document, error)

	// Put writes body as the new version of the document, provided
	// expectedToken still identifies the current version. The changelog
	// describes the update for the store's history. Returns the token of
	// the newly written version, or ErrVersionConflict if expectedToken is
	// stale. An empty expectedToken asserts the document doesn't exist yet.
	Put(
		ctx context.Context, path string, body []byte,
		expectedToken, changelog string,
	) (newToken string, err error)
}
