package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/eduequip/eduequip/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Fixed keys of the local fallback store. Collections are read and written
// wholesale as JSON arrays; the auth keys hold the current session.
const (
	KeyUsers      = "eduequip_users"
	KeyDevices    = "eduequip_devices"
	KeyConfig     = "eduequip_config"
	KeyAuthUser   = "eduequip_auth_user"
	KeyAuthExpiry = "eduequip_auth_expiry"
)

// collectionKeys maps record-service collection names to local store keys.
var collectionKeys = map[string]string{
	CollectionUsers:   KeyUsers,
	CollectionDevices: KeyDevices,
	CollectionConfig:  KeyConfig,
}

type kvEntry struct {
	Key       string    `gorm:"column:key;primaryKey;size:100"`
	Value     string    `gorm:"type:text"`
	UpdatedAt time.Time
}

func (kvEntry) TableName() string { return "kv_entries" }

// LocalStore is the persistent key/value fallback used when the record
// service is unreachable. Reads and writes are read-modify-write with no
// locking; last write wins.
type LocalStore struct {
	db *gorm.DB
}

// OpenLocalStore opens (or creates) the fallback store at the given path.
func OpenLocalStore(path string) (*LocalStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	return NewLocalStore(db)
}

// NewLocalStore wraps an existing gorm connection.
func NewLocalStore(db *gorm.DB) (*LocalStore, error) {
	if err := db.AutoMigrate(&kvEntry{}); err != nil {
		return nil, err
	}
	return &LocalStore{db: db}, nil
}

// Get returns the value stored under key. The second result reports whether
// the key was present.
func (s *LocalStore) Get(key string) (string, bool, error) {
	var entry kvEntry
	err := s.db.Where("`key` = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (s *LocalStore) Set(key, value string) error {
	var entry kvEntry
	err := s.db.Where("`key` = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry = kvEntry{Key: key, Value: value}
		return s.db.Create(&entry).Error
	}
	if err != nil {
		return err
	}
	return s.db.Model(&entry).Update("value", value).Error
}

// Remove deletes key. Removing an absent key is not an error.
func (s *LocalStore) Remove(key string) error {
	return s.db.Where("`key` = ?", key).Delete(&kvEntry{}).Error
}

// Records reads the collection stored under key. An absent key yields an
// empty collection; malformed data is discarded with a warning.
func (s *LocalStore) Records(key string) ([]Record, error) {
	value, ok, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var records []Record
	if err := json.Unmarshal([]byte(value), &records); err != nil {
		logger.Warn().Str("key", key).Err(err).Msg("discarding malformed local collection")
		return nil, nil
	}
	return records, nil
}

// SetRecords writes the whole collection under key.
func (s *LocalStore) SetRecords(key string, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	return s.Set(key, string(data))
}

// --- RecordStore over the wholesale collections ---

func (s *LocalStore) List(ctx context.Context, collection string) ([]Record, error) {
	return s.Records(collectionKeys[collection])
}

func (s *LocalStore) Create(ctx context.Context, collection string, rec Record) error {
	return s.Upsert(ctx, collection, rec)
}

func (s *LocalStore) Update(ctx context.Context, collection string, rec Record) error {
	return s.Upsert(ctx, collection, rec)
}

// Upsert replaces the record with a matching id, or appends when absent, and
// persists the full collection back.
func (s *LocalStore) Upsert(ctx context.Context, collection string, rec Record) error {
	key := collectionKeys[collection]
	records, err := s.Records(key)
	if err != nil {
		return err
	}

	replaced := false
	for i, existing := range records {
		if existing.ID() == rec.ID() {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}
	return s.SetRecords(key, records)
}

// Delete removes the record with the given id. A missing record leaves the
// collection unchanged and is treated as success.
func (s *LocalStore) Delete(ctx context.Context, collection, id string) error {
	key := collectionKeys[collection]
	records, err := s.Records(key)
	if err != nil {
		return err
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.ID() != id {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.SetRecords(key, kept)
}
