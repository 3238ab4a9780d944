package accounts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/eleven-am/taskboard/internal/logger"
	"github.com/eleven-am/taskboard/internal/models"
	"github.com/eleven-am/taskboard/pkg/orm"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type Service struct {
	users *orm.Repository[models.User]
}

func NewService(users *orm.Repository[models.User]) *Service {
	return &Service{users: users}
}

// Authenticate returns the active staff user matching the credentials and
// records the login time.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.Query(ctx).Where(models.Users.Username.Eq(username)).First()
	if errors.Is(err, orm.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsActive || !user.IsStaff || !CheckPassword(password, user.PasswordHash) {
		logger.Accounts().Warn("rejected login", "username", username)
		return nil, ErrInvalidCredentials
	}

	now := s.users.Now()
	user.LastLogin = &now
	if err := s.users.UpdateColumns(ctx, user, "last_login"); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}

// Get loads an active staff user by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || !user.IsStaff {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Credentials identify the admin account maintained by SetAdminPassword.
type Credentials struct {
	Username string
	Password string
	Email    string
}

// SetAdminPassword resets the admin password, creating the superuser when it
// does not exist yet. It reports whether the account was created.
func (s *Service) SetAdminPassword(ctx context.Context, creds Credentials) (bool, error) {
	hash, err := HashPassword(creds.Password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Query(ctx).Where(models.Users.Username.Eq(creds.Username)).First()
	switch {
	case err == nil:
		user.PasswordHash = hash
		if err := s.users.UpdateColumns(ctx, user, "password_hash"); err != nil {
			return false, fmt.Errorf("failed to update admin password: %w", err)
		}
		logger.Accounts().Info("admin password updated", "username", creds.Username)
		return false, nil

	case errors.Is(err, orm.ErrNotFound):
		user = &models.User{
			Username:     creds.Username,
			Email:        creds.Email,
			PasswordHash: hash,
			IsStaff:      true,
			IsSuperuser:  true,
			IsActive:     true,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return false, fmt.Errorf("failed to create admin user: %w", err)
		}
		logger.Accounts().Info("admin user created", "username", creds.Username, "id", user.ID)
		return true, nil

	default:
		return false, fmt.Errorf("failed to look up admin user: %w", err)
	}
}

// PrintCredentials writes the login details shown after SetAdminPassword.
func PrintCredentials(w io.Writer, created bool, creds Credentials, loginURL string) error {
	status := "updated admin password"
	if created {
		status = "created admin user"
	}

	_, err := fmt.Fprintf(w, "✅ Successfully %s\n\n🔐 Admin Login Credentials:\nUsername: %s\nPassword: %s\nURL: %s\n\n🚀 You can now login to the admin panel!\n",
		status, creds.Username, creds.Password, loginURL)
	return err
}
