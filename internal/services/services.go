// Package services implements the application core on top of the persistence
// gateway: equipment and user management, the structured config codec, and
// credential/session handling.
package services

import "github.com/eduequip/eduequip/internal/store"

// Services bundles the application services wired over one gateway.
type Services struct {
	Users   *UserService
	Devices *DeviceService
	Config  *ConfigService
	Auth    *AuthService
}

// New wires the service layer over the given gateway.
func New(gw *store.Gateway) *Services {
	users := NewUserService(gw)
	return &Services{
		Users:   users,
		Devices: NewDeviceService(gw),
		Config:  NewConfigService(gw.Remote(), gw.Local()),
		Auth:    NewAuthService(users, gw.Local()),
	}
}
