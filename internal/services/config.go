package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/internal/store"
	"github.com/eduequip/eduequip/pkg/logger"
	"github.com/google/uuid"
)

// ConfigService maps the flat key/value rows of the config collection onto a
// structured SystemConfig. Each logical key lives in its own row, updated in
// place by row id; when the record service is unreachable the whole structure
// is kept as a single blob in the local store instead.
type ConfigService struct {
	remote store.RecordStore
	local  *store.LocalStore
}

func NewConfigService(remote store.RecordStore, local *store.LocalStore) *ConfigService {
	return &ConfigService{remote: remote, local: local}
}

// configField binds one logical config key to its serializer pair.
type configField struct {
	key    string
	encode func(cfg *models.SystemConfig) (string, error)
	apply  func(cfg *models.SystemConfig, raw string)
}

var configFields = []configField{
	{
		key:    "schoolName",
		encode: func(cfg *models.SystemConfig) (string, error) { return cfg.SchoolName, nil },
		apply:  func(cfg *models.SystemConfig, raw string) { cfg.SchoolName = raw },
	},
	{
		key:    "academicYear",
		encode: func(cfg *models.SystemConfig) (string, error) { return cfg.AcademicYear, nil },
		apply:  func(cfg *models.SystemConfig, raw string) { cfg.AcademicYear = raw },
	},
	{
		key: "categories",
		encode: func(cfg *models.SystemConfig) (string, error) {
			return marshalString(cfg.Categories)
		},
		apply: func(cfg *models.SystemConfig, raw string) {
			var categories []string
			if err := json.Unmarshal([]byte(raw), &categories); err == nil {
				cfg.Categories = categories
			}
		},
	},
	{
		key: "customFields",
		encode: func(cfg *models.SystemConfig) (string, error) {
			return marshalString(cfg.CustomFields)
		},
		apply: func(cfg *models.SystemConfig, raw string) {
			var defs []models.CustomFieldDef
			if err := json.Unmarshal([]byte(raw), &defs); err == nil {
				cfg.CustomFields = defs
			}
		},
	},
}

func marshalString(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Get assembles the current configuration. It never fails: missing rows keep
// their defaults, unknown keys are ignored, and when the record service is
// down the locally stored blob (if any) supersedes the row representation.
func (s *ConfigService) Get(ctx context.Context) models.SystemConfig {
	cfg := models.DefaultSystemConfig()

	rows, err := s.remote.List(ctx, store.CollectionConfig)
	if err != nil {
		logger.Warn().Err(err).Msg("config rows unreachable, using local blob")
		if raw, ok, lerr := s.local.Get(store.KeyConfig); lerr == nil && ok {
			var stored models.SystemConfig
			if err := json.Unmarshal([]byte(raw), &stored); err == nil {
				return stored
			}
			logger.Warn().Msg("discarding malformed local config blob")
		}
		return cfg
	}

	for _, row := range rows {
		key, _ := row["key"].(string)
		raw, ok := row["value"].(string)
		if !ok {
			continue
		}
		for _, field := range configFields {
			if field.key == key {
				field.apply(&cfg, raw)
				break
			}
		}
	}
	return cfg
}

var fieldKeyPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validate rejects configurations whose custom field definitions carry
// malformed or duplicate keys. Called before any persistence happens.
func (s *ConfigService) Validate(cfg *models.SystemConfig) error {
	seen := make(map[string]bool, len(cfg.CustomFields))
	for _, def := range cfg.CustomFields {
		if !fieldKeyPattern.MatchString(def.Key) {
			return fmt.Errorf("custom field key %q must contain only letters, digits and underscores", def.Key)
		}
		if seen[def.Key] {
			return fmt.Errorf("duplicate custom field key %q", def.Key)
		}
		seen[def.Key] = true
	}
	return nil
}

// Save writes each logical key to its own config row, creating rows lazily on
// first save and updating them in place afterwards. Keys are written
// independently and best-effort; the first failure is reported after all keys
// have been attempted. When the initial row read fails the whole structure is
// serialized into the local store instead.
func (s *ConfigService) Save(ctx context.Context, cfg models.SystemConfig) error {
	if err := s.Validate(&cfg); err != nil {
		return err
	}

	rows, err := s.remote.List(ctx, store.CollectionConfig)
	if err != nil {
		logger.Warn().Err(err).Msg("config rows unreachable, saving blob to local store")
		blob, merr := json.Marshal(cfg)
		if merr != nil {
			return merr
		}
		return s.local.Set(store.KeyConfig, string(blob))
	}

	rowIDs := make(map[string]string, len(rows))
	for _, row := range rows {
		if key, ok := row["key"].(string); ok && row.ID() != "" {
			rowIDs[key] = row.ID()
		}
	}

	var firstErr error
	for _, field := range configFields {
		value, err := field.encode(&cfg)
		if err == nil {
			if id, ok := rowIDs[field.key]; ok {
				err = s.remote.Update(ctx, store.CollectionConfig, store.Record{"id": id, "key": field.key, "value": value})
			} else {
				err = s.remote.Create(ctx, store.CollectionConfig, store.Record{"id": uuid.NewString(), "key": field.key, "value": value})
			}
		}
		if err != nil {
			logger.Warn().Str("key", field.key).Err(err).Msg("config row write failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	// The backend can die between the probe and the row writes. Keep the
	// whole structure in the local store before surfacing the failure, same
	// as the probe-failure path above.
	if firstErr != nil {
		if blob, merr := json.Marshal(cfg); merr == nil {
			if lerr := s.local.Set(store.KeyConfig, string(blob)); lerr != nil {
				logger.Error().Err(lerr).Msg("local config fallback write failed")
			}
		}
	}
	return firstErr
}
