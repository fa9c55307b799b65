package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/internal/store"
	"github.com/eduequip/eduequip/pkg/logger"
	"github.com/google/uuid"
)

// DeviceService manages equipment records through the persistence gateway.
type DeviceService struct {
	gw *store.Gateway
}

func NewDeviceService(gw *store.Gateway) *DeviceService {
	return &DeviceService{gw: gw}
}

// List returns all devices, or an empty slice when nothing is stored.
func (s *DeviceService) List(ctx context.Context) []models.Device {
	records := s.gw.List(ctx, store.CollectionDevices)

	devices := make([]models.Device, 0, len(records))
	for _, rec := range records {
		var device models.Device
		if err := store.FromRecord(rec, &device); err != nil {
			logger.Warn().Str("id", rec.ID()).Err(err).Msg("skipping malformed device record")
			continue
		}
		devices = append(devices, device)
	}
	return devices
}

// Get returns the device with the given id.
func (s *DeviceService) Get(ctx context.Context, id string) (*models.Device, bool) {
	rec, ok := s.gw.GetByID(ctx, store.CollectionDevices, id)
	if !ok {
		return nil, false
	}
	var device models.Device
	if err := store.FromRecord(rec, &device); err != nil {
		logger.Warn().Str("id", id).Err(err).Msg("malformed device record")
		return nil, false
	}
	return &device, true
}

// Save upserts a device. The device's history is persisted exactly as given:
// callers append log entries (newest first) before saving, this service never
// mutates the sequence.
func (s *DeviceService) Save(ctx context.Context, device *models.Device) error {
	if device.ID == "" {
		return fmt.Errorf("device id is required")
	}
	if strings.TrimSpace(device.Name) == "" {
		return fmt.Errorf("device name is required")
	}
	if strings.TrimSpace(device.Code) == "" {
		return fmt.Errorf("asset code is required")
	}

	rec, err := store.ToRecord(device)
	if err != nil {
		return err
	}
	return s.gw.Save(ctx, store.CollectionDevices, rec)
}

// Delete removes a device. Deleting an unknown id is a no-op.
func (s *DeviceService) Delete(ctx context.Context, id string) error {
	return s.gw.Delete(ctx, store.CollectionDevices, id)
}

// NewLog builds a history entry for the given action, stamped now. Callers
// prepend it to the device's history before saving.
func NewLog(action, performedBy, notes string) models.DeviceLog {
	return models.DeviceLog{
		ID:          uuid.NewString(),
		Date:        time.Now().Format(time.RFC3339),
		Action:      action,
		PerformedBy: performedBy,
		Notes:       notes,
	}
}

// ValidateCustomFields checks a device's custom field values against the
// configured definitions: required fields must be present and non-empty, and
// select fields must use one of their declared options.
func ValidateCustomFields(device *models.Device, cfg models.SystemConfig) error {
	for _, def := range cfg.CustomFields {
		value, ok := device.CustomFields[def.Key]
		if def.Required && (!ok || strings.TrimSpace(value) == "") {
			return fmt.Errorf("field %q is required", def.Label)
		}
		if ok && value != "" && def.Type == models.FieldSelect && len(def.Options) > 0 {
			valid := false
			for _, option := range def.Options {
				if option == value {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("field %q must be one of its configured options", def.Label)
			}
		}
	}
	return nil
}
