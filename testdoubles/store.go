package testdoubles

import (
	"context"
	"fmt"

	"github.com/gamedrops/droplist/store"
)

// DocumentStore is an in-memory store.DocumentStore that enforces the same
// version token check as the real stores, so concurrent-writer races can be
// simulated by mutating documents between a test subject's Get and Put.
type DocumentStore struct {
	Documents  map[string]*store.Document
	Changelogs []string
	GetCalls   int
	PutCalls   int

	// ForcedConflicts makes the next n Puts fail with ErrVersionConflict
	// regardless of the presented token.
	ForcedConflicts int

	SimulateGetErr func(path string) error
	SimulatePutErr func(path string) error

	// BeforePut runs after the conflict bookkeeping but before the token
	// check, to simulate writers racing the test subject.
	BeforePut func(path string)

	nextVersion int
}

func NewDocumentStore() *DocumentStore {
	simulateNilError := func(_ string) error {
		return nil
	}
	return &DocumentStore{
		Documents:      make(map[string]*store.Document, 2),
		Changelogs:     make([]string, 0, 4),
		SimulateGetErr: simulateNilError,
		SimulatePutErr: simulateNilError,
	}
}

// SetDocument installs a document body with a fresh version token.
func (sd *DocumentStore) SetDocument(path string, body []byte) string {
	sd.nextVersion++
	token := fmt.Sprintf("v%d", sd.nextVersion)
	sd.Documents[path] = &store.Document{Body: body, Token: token}
	return token
}

func (sd *DocumentStore) Get(
	_ context.Context, path string,
) (doc *store.Document, err error) {
	sd.GetCalls++

	if err = sd.SimulateGetErr(path); err != nil {
		return
	}

	current, ok := sd.Documents[path]
	if !ok {
		err = fmt.Errorf("%w: %s", store.ErrDocumentNotFound, path)
		return
	}
	doc = &store.Document{
		Body:  append([]byte(nil), current.Body...),
		Token: current.Token,
	}
	return
}

func (sd *DocumentStore) Put(
	_ context.Context, path string, body []byte,
	expectedToken, changelog string,
) (newToken string, err error) {
	sd.PutCalls++

	if err = sd.SimulatePutErr(path); err != nil {
		return
	} else if sd.ForcedConflicts > 0 {
		sd.ForcedConflicts--
		err = fmt.Errorf("%w: %s", store.ErrVersionConflict, path)
		return
	}

	if sd.BeforePut != nil {
		sd.BeforePut(path)
	}

	current, exists := sd.Documents[path]
	if exists && current.Token != expectedToken {
		err = fmt.Errorf("%w: %s", store.ErrVersionConflict, path)
		return
	} else if !exists && expectedToken != "" {
		err = fmt.Errorf("%w: %s", store.ErrVersionConflict, path)
		return
	}

	newToken = sd.SetDocument(path, append([]byte(nil), body...))
	sd.Changelogs = append(sd.Changelogs, changelog)
	return
}
