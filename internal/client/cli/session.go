package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/pennywise/internal/client/models"
	"github.com/dmitrijs2005/pennywise/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for the account fields and creates the account. The user
// logs in separately afterwards.
func (a *App) Signup(ctx context.Context) error {
	var u models.NewUser
	var err error

	if u.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	u.Password = string(password)

	if u.FullName, err = getSimpleText(a.reader, "Full name", a.out); err != nil {
		return err
	}
	if u.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if u.Phone, err = getSimpleText(a.reader, "Phone", a.out); err != nil {
		return err
	}

	if _, err := a.auth.Signup(ctx, u); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account created. You can log in now.")
	return nil
}

// Login prompts for credentials, installs the token and shows the home
// screen of the new session.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, username, string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Login successful")
	return a.Home(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// Reset bumps the session epoch so every active screen reloads.
func (a *App) Reset(ctx context.Context) error {
	epoch := a.auth.Reset()
	fmt.Fprintf(a.out, "Session reset (epoch %d)\n", epoch)
	return nil
}

// ForgotPassword sets a new password for a username.
func (a *App) ForgotPassword(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.ResetPassword(ctx, username, string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password updated. You can log in now.")
	return nil
}
