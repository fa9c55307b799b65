package models

// Role is the access level of a user account.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// DeviceStatus describes where a piece of equipment is in its lifecycle.
type DeviceStatus string

const (
	StatusAvailable   DeviceStatus = "AVAILABLE"
	StatusInUse       DeviceStatus = "IN_USE"
	StatusBroken      DeviceStatus = "BROKEN"
	StatusMaintenance DeviceStatus = "MAINTENANCE"
	StatusLost        DeviceStatus = "LOST"
)

// User represents an account that can log in and manage equipment.
// PasswordHash is empty for accounts created before password storage was
// introduced; those fall back to the legacy login rules in the auth service.
//
// Mutable fields serialize unconditionally (no omitempty): the record service
// merges update payloads into the stored record, so a field missing from the
// payload would keep its previous value and could never be cleared.
type User struct {
	ID                 string `json:"id"`
	Username           string `json:"username"`
	FullName           string `json:"fullName"`
	Email              string `json:"email"`
	Role               Role   `json:"role"`
	Department         string `json:"department"`
	PasswordHash       string `json:"passwordHash"`
	MustChangePassword bool   `json:"mustChangePassword"`
	LastLogin          int64  `json:"lastLogin"` // unix milliseconds
}

// DeviceLog is one entry in a device's history. Entries are immutable once
// appended; the history sequence is newest-first.
type DeviceLog struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Action      string `json:"action"`
	PerformedBy string `json:"performedBy"`
	Notes       string `json:"notes,omitempty"`
	ReportImage string `json:"reportImage,omitempty"`
}

// Device is a tracked piece of school equipment.
type Device struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Code         string            `json:"code"` // asset code
	Category     string            `json:"category"`
	Status       DeviceStatus      `json:"status"`
	Location     string            `json:"location"`
	AssignedTo   string            `json:"assignedTo"` // user ID
	PurchaseDate string            `json:"purchaseDate"`
	Description  string            `json:"description"`
	ImageURL     string            `json:"imageUrl"`
	History      []DeviceLog       `json:"history"`
	CustomFields map[string]string `json:"customFields"`
}

// FieldType is the input type of a custom field definition.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDate     FieldType = "date"
	FieldSelect   FieldType = "select"
	FieldTextarea FieldType = "textarea"
)

// CustomFieldDef declares an extra device field managed by administrators.
// Options is only meaningful when Type is FieldSelect.
type CustomFieldDef struct {
	Key      string    `json:"key"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Options  []string  `json:"options,omitempty"`
	Required bool      `json:"required"`
}

// SystemConfig is the structured application configuration, assembled from
// individual key/value rows in the config collection.
type SystemConfig struct {
	SchoolName   string           `json:"schoolName"`
	AcademicYear string           `json:"academicYear"`
	Categories   []string         `json:"categories"`
	CustomFields []CustomFieldDef `json:"customFields"`
}

// DefaultSystemConfig returns the built-in configuration used when the config
// collection is empty or unreachable.
func DefaultSystemConfig() SystemConfig {
	return SystemConfig{
		SchoolName:   "Future High School",
		AcademicYear: "2023-2024",
		Categories:   []string{"Laptop", "Projector", "Tablet", "Camera", "Other"},
		CustomFields: []CustomFieldDef{},
	}
}

// AdminUserID is the id of the built-in administrator account. The account is
// synthesized on read if the backing store does not contain it and can never
// be deleted.
const AdminUserID = "1"

// SeedUsers returns the bootstrap user list used when the users collection is
// empty or unreachable, so the first login is always possible.
func SeedUsers() []User {
	return []User{
		{
			ID:       AdminUserID,
			Username: "admin",
			FullName: "System Administrator",
			Email:    "admin@school.edu",
			Role:     RoleAdmin,
		},
	}
}
