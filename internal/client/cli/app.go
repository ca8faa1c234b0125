// Package cli implements the command-line surface of the auth client.
// Each verb maps to one server endpoint; credentials are read from the
// terminal, tokens are passed as arguments.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/authkeep/authkeep/internal/client/api"
	"github.com/authkeep/authkeep/internal/common"
)

// Service is the API surface the commands depend on.
type Service interface {
	SignUp(ctx context.Context, email, name, password string) error
	SignIn(ctx context.Context, email, password string, remember bool) (*api.SignInResult, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (string, error)
	VerifyAccount(ctx context.Context, token string) error
	ResendVerification(ctx context.Context, email string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	Ping(ctx context.Context) error
}

type App struct {
	svc Service
	in  *bufio.Reader
	out io.Writer
}

func NewApp(svc Service, in io.Reader, out io.Writer) *App {
	return &App{svc: svc, in: bufio.NewReader(in), out: out}
}

const usage = `usage: authctl [flags] <command> [args]

commands:
  signup                         create an account
  signin [remember]              obtain an access token
  refresh <access> <refresh>     exchange tokens for a new access token
  verify <token>                 verify an account
  resend                         resend the verification email
  reset-request                  request a password reset email
  reset <token>                  set a new password
  ping                           check server reachability

flags:
  -e url   server base URL
  -i id    application identifier
  -o sec   request timeout in seconds
  -c file  JSON config file
`

// Run dispatches a single command. args must already be stripped of flags.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return nil
	}

	switch args[0] {
	case "signup":
		return a.signUp(ctx)
	case "signin":
		remember := len(args) > 1 && args[1] == "remember"
		return a.signIn(ctx, remember)
	case "refresh":
		if len(args) != 3 {
			return fmt.Errorf("refresh needs an access token and a refresh token")
		}
		return a.refresh(ctx, args[1], args[2])
	case "verify":
		if len(args) != 2 {
			return fmt.Errorf("verify needs a token")
		}
		return a.verify(ctx, args[1])
	case "resend":
		return a.resend(ctx)
	case "reset-request":
		return a.resetRequest(ctx)
	case "reset":
		if len(args) != 2 {
			return fmt.Errorf("reset needs a token")
		}
		return a.reset(ctx, args[1])
	case "ping":
		if err := a.svc.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "server is up")
		return nil
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func (a *App) signUp(ctx context.Context) error {
	email, err := GetSimpleText(a.in, "Email", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.in, "Name", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.svc.SignUp(ctx, email, name, string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "account created, check your mailbox for the verification link")
	return nil
}

func (a *App) signIn(ctx context.Context, remember bool) error {
	email, err := GetSimpleText(a.in, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	result, err := a.svc.SignIn(ctx, email, string(password), remember)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "access token: %s\n", result.AccessToken)
	if result.RefreshToken != "" {
		fmt.Fprintf(a.out, "refresh token: %s\n", result.RefreshToken)
	}
	return nil
}

func (a *App) refresh(ctx context.Context, accessToken, refreshToken string) error {
	access, err := a.svc.Refresh(ctx, accessToken, refreshToken)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "access token: %s\n", access)
	return nil
}

func (a *App) verify(ctx context.Context, token string) error {
	if err := a.svc.VerifyAccount(ctx, token); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "account verified")
	return nil
}

func (a *App) resend(ctx context.Context) error {
	email, err := GetSimpleText(a.in, "Email", a.out)
	if err != nil {
		return err
	}
	if err := a.svc.ResendVerification(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "verification email sent")
	return nil
}

func (a *App) resetRequest(ctx context.Context) error {
	email, err := GetSimpleText(a.in, "Email", a.out)
	if err != nil {
		return err
	}
	if err := a.svc.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "recovery email sent")
	return nil
}

func (a *App) reset(ctx context.Context, token string) error {
	password, err := GetPassword(a.out, "Enter new password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.svc.ResetPassword(ctx, token, string(password)); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "password updated")
	return nil
}
