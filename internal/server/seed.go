package server

import (
	"context"
	"errors"

	"github.com/userpanel/adminserver/internal/auth"
	"github.com/userpanel/adminserver/internal/logging"
	"github.com/userpanel/adminserver/internal/services"
	"github.com/userpanel/adminserver/internal/store"
	"github.com/userpanel/adminserver/types"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin" // change after first login
	defaultAdminEmail    = "admin@example.com"
	defaultAdminFullName = "Administrator"
)

// seedDefaults ensures the default admin account exists, the
// administrators group exists, and the admin is a member. Idempotent;
// runs on every startup.
func seedDefaults(
	ctx context.Context,
	users *services.UserService,
	groups *services.GroupService,
	log logging.Logger,
) error {
	admin, err := users.GetByUsername(ctx, defaultAdminUsername)
	switch {
	case err == nil:
		log.Info(ctx, "admin user already exists")
	case errors.Is(err, store.ErrNotFound):
		hashed, err := auth.HashPassword(defaultAdminPassword)
		if err != nil {
			return err
		}
		admin, err = users.Create(ctx, types.User{
			Username:     defaultAdminUsername,
			Email:        defaultAdminEmail,
			FullName:     defaultAdminFullName,
			PasswordHash: hashed,
		})
		if err != nil {
			return err
		}
		log.Info(ctx, "default admin user created")
	default:
		return err
	}

	group, err := groups.GetByName(ctx, types.AdminGroup)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		group, err = groups.Create(ctx, types.AdminGroup)
		if err != nil {
			return err
		}
		log.Info(ctx, "default administrators group created")
	default:
		return err
	}

	if !admin.InGroup(types.AdminGroup) {
		if err := groups.AddMember(ctx, admin.ID, group.ID); err != nil {
			return err
		}
		log.Info(ctx, "admin user added to administrators group")
	}
	return nil
}
