package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/pennywise/internal/client/client"
	"github.com/dmitrijs2005/pennywise/internal/client/credentials"
	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/dmitrijs2005/pennywise/internal/logging"
)

// CredentialStore is the part of *credentials.Store the auth service drives.
type CredentialStore interface {
	Token() (string, bool)
	Session() (credentials.Session, bool)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context)
	Reset() uint64
}

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange credentials for a token and install it (epoch bump).
//   - Signup: create an account; the user still has to log in.
//   - ResetPassword: set a new password for username.
//   - Logout: drop the token (epoch bump).
//   - Reset: bump the epoch so every view re-synchronizes.
type AuthService interface {
	Login(ctx context.Context, username, password string) error
	Signup(ctx context.Context, user models.NewUser) (*models.User, error)
	ResetPassword(ctx context.Context, username, newPassword string) error
	Logout(ctx context.Context)
	Reset() uint64
	LoggedIn() bool
	Session() (credentials.Session, bool)
}

type authService struct {
	client client.Client
	creds  CredentialStore
	log    logging.Logger
}

func NewAuthService(c client.Client, creds CredentialStore, log logging.Logger) AuthService {
	if log == nil {
		log = logging.Nop()
	}
	return &authService{client: c, creds: creds, log: log}
}

func (a *authService) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username", "must not be empty")
	}
	if password == "" {
		return invalid("password", "must not be empty")
	}

	token, err := a.client.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}
	if err := a.creds.SetToken(ctx, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	a.log.Info(ctx, "logged in", "username", username)
	return nil
}

func (a *authService) Signup(ctx context.Context, user models.NewUser) (*models.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	switch {
	case user.Username == "":
		return nil, invalid("username", "must not be empty")
	case user.Password == "":
		return nil, invalid("password", "must not be empty")
	case !strings.Contains(user.Email, "@"):
		return nil, invalid("email", "must contain '@'")
	}

	created, err := a.client.Signup(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("signup error: %w", err)
	}
	return created, nil
}

func (a *authService) ResetPassword(ctx context.Context, username, newPassword string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return invalid("username", "must not be empty")
	}
	if newPassword == "" {
		return invalid("new password", "must not be empty")
	}
	if err := a.client.ResetPassword(ctx, username, newPassword); err != nil {
		return fmt.Errorf("reset password error: %w", err)
	}
	return nil
}

func (a *authService) Logout(ctx context.Context) {
	a.creds.ClearToken(ctx)
	a.log.Info(ctx, "logged out")
}

func (a *authService) Reset() uint64 {
	return a.creds.Reset()
}

func (a *authService) LoggedIn() bool {
	_, ok := a.creds.Token()
	return ok
}

func (a *authService) Session() (credentials.Session, bool) {
	return a.creds.Session()
}
