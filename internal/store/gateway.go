package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/pkg/logger"
)

// Gateway is the single persistence entry point. Every call goes to the
// remote record service first; any failure downgrades silently to the local
// fallback store, so reads never fail and writes never lose data.
//
// The save path probes the remote collection to pick between CREATE and
// UPDATE. The probe and the subsequent write are not atomic: a concurrent
// writer in between can produce a duplicate create or a lost update. The
// record service resolves duplicate creates last-write-wins on id; no locking
// is added here.
type Gateway struct {
	remote RecordStore
	local  *LocalStore
}

func NewGateway(remote RecordStore, local *LocalStore) *Gateway {
	return &Gateway{remote: remote, local: local}
}

// Local exposes the fallback store for components that keep their own state
// in it (session manager, config blob).
func (g *Gateway) Local() *LocalStore {
	return g.local
}

// Remote exposes the remote backend for the config codec, which targets
// individual rows instead of whole records.
func (g *Gateway) Remote() RecordStore {
	return g.remote
}

// ListRemote fetches a collection from the remote backend only, with
// structured fields decoded. It is the existence probe used by Save and the
// config codec; unlike List it reports failure instead of falling back.
func (g *Gateway) ListRemote(ctx context.Context, collection string) ([]Record, error) {
	records, err := g.remote.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decodeRecords(collection, records), nil
}

// List returns a collection, falling back to the local store when the remote
// backend is unreachable. The users collection falls back to the built-in
// seed when empty, so the first login is always possible.
func (g *Gateway) List(ctx context.Context, collection string) []Record {
	records, err := g.ListRemote(ctx, collection)
	if err != nil {
		logger.Warn().Str("collection", collection).Err(err).Msg("remote list failed, using local store")
		records, err = g.local.List(ctx, collection)
		if err != nil {
			logger.Error().Str("collection", collection).Err(err).Msg("local list failed")
			records = nil
		}
	}

	if collection == CollectionUsers && len(records) == 0 {
		return seedUserRecords()
	}
	return records
}

// GetByID scans the collection for a record with the given id. There is no
// dedicated remote endpoint for single records.
func (g *Gateway) GetByID(ctx context.Context, collection, id string) (Record, bool) {
	for _, rec := range g.List(ctx, collection) {
		if rec.ID() == id {
			return rec, true
		}
	}
	return nil, false
}

// Save upserts a record. The remote collection is probed to decide between
// CREATE and UPDATE; if the probe fails the write downgrades to a local
// upsert. Exactly one backend is written per call, and a failed remote write
// lands in the local store before any error is surfaced.
func (g *Gateway) Save(ctx context.Context, collection string, rec Record) error {
	if rec.ID() == "" {
		return fmt.Errorf("record for collection %q has no id", collection)
	}

	existing, err := g.remote.List(ctx, collection)
	if err != nil {
		logger.Warn().Str("collection", collection).Err(err).Msg("remote probe failed, saving to local store")
		return g.local.Upsert(ctx, collection, rec)
	}

	exists := false
	for _, candidate := range existing {
		if candidate.ID() == rec.ID() {
			exists = true
			break
		}
	}

	encoded := encodeRecord(collection, rec)
	if exists {
		err = g.remote.Update(ctx, collection, encoded)
	} else {
		err = g.remote.Create(ctx, collection, encoded)
	}
	if err == nil {
		return nil
	}

	// The remote write failed after a successful probe. Preserve the data
	// locally, then surface structured rejections so the caller can tell
	// the user; plain unavailability stays silent.
	if lerr := g.local.Upsert(ctx, collection, rec); lerr != nil {
		logger.Error().Str("collection", collection).Err(lerr).Msg("local fallback write failed")
	}
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	logger.Warn().Str("collection", collection).Err(err).Msg("remote write failed, record kept in local store")
	return nil
}

// Delete removes a record by id. Remote failures fall back to rewriting the
// local collection without the record. A record missing from either backend
// is treated as already deleted; a remote 404 still clears any local copy
// left behind by an earlier fallback write.
func (g *Gateway) Delete(ctx context.Context, collection, id string) error {
	err := g.remote.Delete(ctx, collection, id)
	if err == nil {
		return nil
	}

	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Status == 404 {
		if lerr := g.local.Delete(ctx, collection, id); lerr != nil {
			logger.Warn().Str("collection", collection).Str("id", id).Err(lerr).Msg("could not clear local copy")
		}
		return nil
	}

	logger.Warn().Str("collection", collection).Str("id", id).Err(err).Msg("remote delete failed, removing from local store")
	return g.local.Delete(ctx, collection, id)
}

func seedUserRecords() []Record {
	users := models.SeedUsers()
	records := make([]Record, 0, len(users))
	for _, user := range users {
		rec, err := ToRecord(user)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}
