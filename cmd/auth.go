package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/playster/internal/auth"
	"github.com/desertthunder/playster/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in with the method named by --method and stores the account on success.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	method, err := auth.ParseMethod(cmd.String("method"))
	if err != nil {
		return err
	}

	if method != auth.MethodCredential && !r.config.Google.HasClient() {
		return fmt.Errorf("%w: set google.client_id and google.client_secret in %s", shared.ErrMissingCredentials, r.configPath)
	}

	ctrl, err := r.controller(auth.WriterPrompter{W: r.output})
	if err != nil {
		return err
	}

	r.logger.Info("signing in", "method", method)

	out := ctrl.SignIn(ctx, method)
	if out.Err != nil {
		return fmt.Errorf("sign-in with %s failed: %w", method, out.Err)
	}

	return r.writePlain("✓ Signed in as %s\n", out.Identity.Name)
}

type authStatus struct {
	SignedIn    bool   `json:"signed_in"`
	Account     string `json:"account,omitempty"`
	AccountType string `json:"account_type,omitempty"`
	HasToken    bool   `json:"has_token"`
	StoredCount int    `json:"stored_accounts"`
}

// AuthStatus reports the account restored from the preference store.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.restore(ctx); err != nil {
		return err
	}

	stored, err := r.tokens.List(ctx)
	if err != nil {
		return err
	}

	snap := r.session.Current()
	status := authStatus{SignedIn: snap.SignedIn(), StoredCount: len(stored)}
	if status.SignedIn {
		status.Account = snap.Identity.Name
		status.AccountType = snap.Identity.Type
		if _, err := r.tokens.Get(ctx, snap.Identity.Name); err == nil {
			status.HasToken = true
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if !status.SignedIn {
		r.writePlain("✗ Not signed in\n")
		if status.StoredCount > 0 {
			r.writePlain("Tokens are stored for %d account(s).\n", status.StoredCount)
		}
		return r.writePlain("Run 'playster auth login' to sign in.\n")
	}

	r.writePlain("✓ Signed in as %s\n", status.Account)
	r.writePlain("Account type: %s\n", status.AccountType)
	if !status.HasToken {
		r.writePlain("YouTube access: ✗ no stored token, sign in with browser or device to grant it\n")
	}
	return nil
}

// AuthLogout clears the stored account, its token and the session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if err := r.restore(ctx); err != nil {
		return err
	}

	ctrl, err := r.controller(nil)
	if err != nil {
		return err
	}

	account := r.session.Current().Identity
	if err := ctrl.SignOut(ctx); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}

	if !account.Valid() {
		return r.writePlain("Not signed in\n")
	}
	return r.writePlain("✓ Signed out %s\n", account.Name)
}
