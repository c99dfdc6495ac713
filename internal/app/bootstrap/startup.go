// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	userstore "github.com/felix-ong/volunteer-board/internal/app/store/users"
	"github.com/felix-ong/volunteer-board/internal/app/system/auditlog"
	"github.com/felix-ong/volunteer-board/internal/app/system/auth"
	"github.com/felix-ong/volunteer-board/internal/app/system/normalize"
	"github.com/felix-ong/volunteer-board/internal/app/system/timeouts"
	"github.com/felix-ong/volunteer-board/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
// It starts the gauge worker and promotes admin_email to admin when that
// account exists. The memory backend starts empty every time, so there the
// admin account is first created from admin_password.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Gauges != nil {
		deps.Gauges.Start()
	}
	if appCfg.AdminEmail == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()
	audit := auditlog.New(deps.Audit, logger, appCfg.AuditLog)
	if appCfg.StoreBackend == backendMemory {
		if err := seedAdmin(ctx, deps.Users, auth.NewPasswordService(), appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}
	return ensureAdmin(ctx, deps.Users, audit, appCfg.AdminEmail, logger)
}

// ensureAdmin gives the account with email the admin role. A missing
// account is not an error: admins sign up like everyone else and are
// promoted on the next start.
func ensureAdmin(ctx context.Context, users userRepository, audit *auditlog.Logger, email string, logger *zap.Logger) error {
	email = normalize.Email(email)
	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, userstore.ErrNotFound) {
		logger.Warn("admin_email has no account yet; sign up first", zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}
	if u.Role == models.RoleAdmin {
		return nil
	}
	if err := users.SetRole(ctx, u.ID, models.RoleAdmin); err != nil {
		return err
	}
	logger.Info("promoted account to admin", zap.String("email", email), zap.String("previous_role", u.Role))
	audit.AdminPromoted(ctx, u.ID, email)
	return nil
}

// seedAdmin creates the admin_email account when it does not exist yet.
// ensureAdmin then gives it the admin role.
func seedAdmin(ctx context.Context, users userRepository, passwords *auth.PasswordService, email, password string, logger *zap.Logger) error {
	email = normalize.Email(email)
	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return err
	}
	hash, err := passwords.Hash(password)
	if err != nil {
		return err
	}
	if _, err := users.Create(ctx, models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}); err != nil {
		return err
	}
	logger.Info("created admin account", zap.String("email", email))
	return nil
}
