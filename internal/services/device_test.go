package services

import (
	"context"
	"testing"

	"github.com/eduequip/eduequip/internal/models"
	"github.com/eduequip/eduequip/internal/store"
)

func TestDeviceSave_Validation(t *testing.T) {
	tests := []struct {
		name    string
		device  models.Device
		wantErr bool
	}{
		{"valid device", models.Device{ID: "d1", Name: "Laptop", Code: "L-1"}, false},
		{"missing id", models.Device{Name: "Laptop", Code: "L-1"}, true},
		{"missing name", models.Device{ID: "d1", Code: "L-1"}, true},
		{"blank name", models.Device{ID: "d1", Name: "   ", Code: "L-1"}, true},
		{"missing asset code", models.Device{ID: "d1", Name: "Laptop"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestEnv(t)
			err := svc.Devices.Save(context.Background(), &tt.device)
			if (err != nil) != tt.wantErr {
				t.Errorf("Save() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Borrow flow: the caller prepends a log entry and saves; the service
// persists the history exactly as given.
func TestDeviceBorrowFlow(t *testing.T) {
	svc, _, _ := newTestEnv(t)
	ctx := context.Background()

	device := models.Device{
		ID:     "d1",
		Name:   "Tablet",
		Code:   "TB-7",
		Status: models.StatusAvailable,
	}
	if err := svc.Devices.Save(ctx, &device); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	borrowed, ok := svc.Devices.Get(ctx, "d1")
	if !ok {
		t.Fatal("Get() did not find the device")
	}
	borrowed.Status = models.StatusInUse
	borrowed.AssignedTo = "u1"
	borrowed.History = append([]models.DeviceLog{NewLog("BORROW", "Alice", "")}, borrowed.History...)
	if err := svc.Devices.Save(ctx, borrowed); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, ok := svc.Devices.Get(ctx, "d1")
	if !ok {
		t.Fatal("Get() did not find the device after borrow")
	}
	if got.Status != models.StatusInUse {
		t.Errorf("status = %v, want IN_USE", got.Status)
	}
	if got.AssignedTo != "u1" {
		t.Errorf("assignedTo = %q, want u1", got.AssignedTo)
	}
	if len(got.History) != 1 {
		t.Fatalf("history length = %d, want 1", len(got.History))
	}
	if got.History[0].Action != "BORROW" || got.History[0].PerformedBy != "Alice" {
		t.Errorf("history[0] = %+v", got.History[0])
	}
	if got.History[0].ID == "" || got.History[0].Date == "" {
		t.Errorf("log entry missing id or date: %+v", got.History[0])
	}
}

func TestDeviceFlow_SurvivesOutage(t *testing.T) {
	svc, remote, _ := newTestEnv(t)
	ctx := context.Background()
	remote.listErr = &store.UnavailableError{Op: "list"}

	device := models.Device{ID: "d1", Name: "Camera", Code: "C-3", Status: models.StatusAvailable}
	if err := svc.Devices.Save(ctx, &device); err != nil {
		t.Fatalf("Save() during outage error = %v", err)
	}

	got, ok := svc.Devices.Get(ctx, "d1")
	if !ok {
		t.Fatal("device not readable from the fallback store")
	}
	if got.Name != "Camera" {
		t.Errorf("got = %+v", got)
	}

	if err := svc.Devices.Delete(ctx, "d1"); err != nil {
		t.Fatalf("Delete() during outage error = %v", err)
	}
	if _, ok := svc.Devices.Get(ctx, "d1"); ok {
		t.Error("device still present after delete")
	}
}

func TestValidateCustomFields(t *testing.T) {
	cfg := models.SystemConfig{
		CustomFields: []models.CustomFieldDef{
			{Key: "serial", Label: "Serial Number", Type: models.FieldText, Required: true},
			{Key: "grade", Label: "Condition Grade", Type: models.FieldSelect, Options: []string{"A", "B", "C"}},
		},
	}

	tests := []struct {
		name    string
		fields  map[string]string
		wantErr bool
	}{
		{"all valid", map[string]string{"serial": "SN-1", "grade": "A"}, false},
		{"required missing", map[string]string{"grade": "A"}, true},
		{"required blank", map[string]string{"serial": "   "}, true},
		{"optional select omitted", map[string]string{"serial": "SN-1"}, false},
		{"select outside options", map[string]string{"serial": "SN-1", "grade": "Z"}, true},
		{"unknown keys ignored", map[string]string{"serial": "SN-1", "extra": "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := models.Device{ID: "d1", CustomFields: tt.fields}
			err := ValidateCustomFields(&device, cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCustomFields() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
