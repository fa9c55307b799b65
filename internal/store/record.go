// Package store provides record persistence against a remote record service
// with a transparent local fallback. All pages of the application read and
// write through the Gateway; nothing else touches the backends directly.
package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection names understood by the record service.
const (
	CollectionUsers   = "users"
	CollectionDevices = "data"
	CollectionConfig  = "config"
)

// Record is one flat record as exchanged with the record service. Every
// record carries a string "id" field unique within its collection.
type Record map[string]any

// ID returns the record's id field, or "" when absent or not a string.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ToRecord converts a domain value to its wire record via its JSON form.
func ToRecord(v any) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FromRecord decodes a wire record into the given domain value.
func FromRecord(rec Record, v any) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// RecordStore is the contract both backends implement. The Gateway tries the
// remote implementation first and falls back to the local one.
type RecordStore interface {
	List(ctx context.Context, collection string) ([]Record, error)
	Create(ctx context.Context, collection string, rec Record) error
	Update(ctx context.Context, collection string, rec Record) error
	Delete(ctx context.Context, collection, id string) error
}

// UnavailableError marks the remote backend as unreachable or broken in a way
// the gateway recovers from by switching to the local store.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("record service unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// ServiceError is a structured rejection returned by the record service
// itself, such as an unknown collection. Unlike UnavailableError it is
// surfaced to callers of Save after the fallback write has happened.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("record service rejected request (%d): %s", e.Status, e.Message)
}
