package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/eduequip/eduequip/internal/store"
)

// stubRemote is an in-memory stand-in for the record service.
type stubRemote struct {
	records  map[string][]store.Record
	listErr  error
	writeErr error
	creates  int
	updates  int
}

func newStubRemote() *stubRemote {
	return &stubRemote{records: make(map[string][]store.Record)}
}

func (f *stubRemote) List(ctx context.Context, collection string) ([]store.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]store.Record{}, f.records[collection]...), nil
}

func (f *stubRemote) Create(ctx context.Context, collection string, rec store.Record) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.creates++
	f.records[collection] = append(f.records[collection], rec)
	return nil
}

func (f *stubRemote) Update(ctx context.Context, collection string, rec store.Record) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.updates++
	for i, existing := range f.records[collection] {
		if existing.ID() == rec.ID() {
			// The record service merges the payload into the stored record.
			merged := existing.Clone()
			for k, v := range rec {
				merged[k] = v
			}
			f.records[collection][i] = merged
			return nil
		}
	}
	return &store.ServiceError{Status: 404, Message: "Item not found"}
}

func (f *stubRemote) Delete(ctx context.Context, collection, id string) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	for i, existing := range f.records[collection] {
		if existing.ID() == id {
			f.records[collection] = append(f.records[collection][:i], f.records[collection][i+1:]...)
			return nil
		}
	}
	return &store.ServiceError{Status: 404, Message: "Item not found"}
}

func newTestEnv(t *testing.T) (*Services, *stubRemote, *store.LocalStore) {
	t.Helper()
	remote := newStubRemote()
	local, err := store.OpenLocalStore(filepath.Join(t.TempDir(), "local.db"))
	if err != nil {
		t.Fatalf("OpenLocalStore() error = %v", err)
	}
	return New(store.NewGateway(remote, local)), remote, local
}
