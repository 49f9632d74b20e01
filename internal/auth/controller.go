package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/server"
	"github.com/desertthunder/playster/internal/session"
	"github.com/desertthunder/playster/internal/shared"
	"golang.org/x/oauth2"
)

const (
	DefaultTimeout       = 3 * time.Minute
	DefaultBrokerTimeout = 30 * time.Second

	persistTimeout  = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Method is the sign-in mechanism a request uses.
type Method int

const (
	MethodLegacy Method = iota
	MethodOneTap
	MethodCredential
)

func (m Method) String() string {
	switch m {
	case MethodLegacy:
		return "browser"
	case MethodOneTap:
		return "device"
	case MethodCredential:
		return "credential"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ParseMethod maps a method name (browser, device, credential) to a [Method].
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "browser", "legacy":
		return MethodLegacy, nil
	case "device", "onetap", "one-tap":
		return MethodOneTap, nil
	case "credential", "credentials":
		return MethodCredential, nil
	default:
		return 0, fmt.Errorf("%w: unknown sign-in method %q", shared.ErrInvalidFlag, s)
	}
}

// Outcome is the result of one sign-in attempt.
type Outcome struct {
	Method   Method
	Identity models.Identity
	Token    *oauth2.Token
	Err      error
}

// AccountStore persists the signed-in identity.
type AccountStore interface {
	SaveAccount(ctx context.Context, id models.Identity) error
	Clear(ctx context.Context) error
}

// TokenStore persists OAuth tokens per account.
type TokenStore interface {
	Save(ctx context.Context, id models.Identity, token *oauth2.Token) error
	Get(ctx context.Context, name string) (*oauth2.Token, error)
	Delete(ctx context.Context, name string) error
}

// Options configures a [Controller].
type Options struct {
	OAuth    *oauth2.Config
	Session  *session.Holder
	Accounts AccountStore
	Tokens   TokenStore
	Broker   Broker
	Prompter Prompter

	// OpenBrowser is used for browser sign-in and to open the device verification page. Nil disables both.
	OpenBrowser shared.BrowserOpener

	// CallbackAddr is where the browser sign-in listener binds. Port 0 picks a free port.
	CallbackAddr string

	// AccountType is recorded for device and stored-credential identities.
	AccountType string

	// ServerClientID is sent to the broker and expected in the audience of brokered ID tokens.
	ServerClientID string

	Timeout       time.Duration
	BrokerTimeout time.Duration
	Logger        *log.Logger
}

// Controller runs the three sign-in mechanisms and commits their outcomes to the session.
type Controller struct {
	oauth          *oauth2.Config
	session        *session.Holder
	accounts       AccountStore
	tokens         TokenStore
	broker         Broker
	prompter       Prompter
	openBrowser    shared.BrowserOpener
	callbackAddr   string
	accountType    string
	serverClientID string
	timeout        time.Duration
	brokerTimeout  time.Duration
	logger         *log.Logger
}

// NewController creates a [Controller], filling in defaults for zero options.
func NewController(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Session == nil {
		opts.Session = session.New(opts.Logger)
	}
	if opts.OAuth == nil {
		opts.OAuth = NewOAuthConfig(shared.GoogleConfig{})
	}
	if opts.CallbackAddr == "" {
		opts.CallbackAddr = "127.0.0.1:0"
	}
	if opts.AccountType == "" {
		opts.AccountType = "io.playster.cli"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BrokerTimeout <= 0 {
		opts.BrokerTimeout = DefaultBrokerTimeout
	}
	if opts.ServerClientID == "" {
		opts.ServerClientID = opts.OAuth.ClientID
	}

	return &Controller{
		oauth:          opts.OAuth,
		session:        opts.Session,
		accounts:       opts.Accounts,
		tokens:         opts.Tokens,
		broker:         opts.Broker,
		prompter:       opts.Prompter,
		openBrowser:    opts.OpenBrowser,
		callbackAddr:   opts.CallbackAddr,
		accountType:    opts.AccountType,
		serverClientID: opts.ServerClientID,
		timeout:        opts.Timeout,
		brokerTimeout:  opts.BrokerTimeout,
		logger:         shared.WithLogger(opts.Logger, "component", "auth"),
	}
}

// Session returns the holder outcomes are committed to.
func (c *Controller) Session() *session.Holder {
	return c.session
}

// SignIn dispatches to the Start function for m.
func (c *Controller) SignIn(ctx context.Context, m Method) Outcome {
	switch m {
	case MethodLegacy:
		return c.StartLegacySignIn(ctx)
	case MethodOneTap:
		return c.StartOneTapSignIn(ctx)
	case MethodCredential:
		return c.StartCredentialSignIn(ctx)
	default:
		attempt := c.session.Begin()
		return c.commit(ctx, attempt, Outcome{Method: m, Err: fmt.Errorf("%w: unknown method %v", ErrSignInDispatch, m)})
	}
}

// StartLegacySignIn runs the browser authorization-code flow.
//
// A loopback listener receives the redirect; the exchanged token is handed to [Controller.ProcessLegacySignIn].
func (c *Controller) StartLegacySignIn(ctx context.Context) Outcome {
	attempt := c.session.Begin()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.legacyFlow(ctx)
	if err != nil {
		return c.commit(ctx, attempt, Outcome{Method: MethodLegacy, Err: c.deadline(ctx, err)})
	}
	return c.commit(ctx, attempt, c.ProcessLegacySignIn(token))
}

func (c *Controller) legacyFlow(ctx context.Context) (*oauth2.Token, error) {
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(c.logger), server.Recoverer(c.logger))

	srv := server.New(router, c.logger)
	if err := srv.Listen(c.callbackAddr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignInDispatch, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			c.logger.Warn("error shutting down callback server", "error", err)
		}
	}()

	conf := *c.oauth
	conf.RedirectURL = srv.URL("/callback")

	state := shared.GenerateID()
	verifier := oauth2.GenerateVerifier()
	handler := server.NewOAuthHandler(ctx, &conf, state, oauth2.VerifierOption(verifier))
	router.Handler(handler)
	srv.Serve()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))
	c.logger.Info("starting browser sign-in", "redirect", conf.RedirectURL)

	dispatched := false
	if c.openBrowser != nil {
		if err := c.openBrowser(authURL); err != nil {
			c.logger.Warn("failed to open browser", "error", err)
		} else {
			dispatched = true
		}
	}
	if c.prompter != nil {
		if err := c.prompter.Prompt(ctx, Prompt{Method: MethodLegacy, URL: authURL}); err != nil {
			c.logger.Warn("failed to show sign-in URL", "error", err)
		} else {
			dispatched = true
		}
	}
	if !dispatched {
		return nil, fmt.Errorf("%w: no way to show the sign-in page", ErrSignInDispatch)
	}

	select {
	case result := <-handler.Result():
		if result.Error() != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, result.Error())
		}
		return result.Token, nil
	case err := <-srv.Errors():
		return nil, fmt.Errorf("%w: callback server: %v", ErrSignInDispatch, err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// StartOneTapSignIn runs the device authorization flow.
//
// The verification URL and user code go to the [Prompter], the verification page is opened when a browser is
// available, and the token endpoint is polled until the user approves, denies or the deadline passes.
func (c *Controller) StartOneTapSignIn(ctx context.Context) Outcome {
	attempt := c.session.Begin()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	token, err := c.deviceFlow(ctx)
	if err != nil {
		return c.commit(ctx, attempt, Outcome{Method: MethodOneTap, Err: c.deadline(ctx, err)})
	}
	return c.commit(ctx, attempt, c.ProcessOneTapSignIn(token))
}

func (c *Controller) deviceFlow(ctx context.Context) (*oauth2.Token, error) {
	resp, err := c.oauth.DeviceAuth(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: device prompt: %v", ErrSignInDispatch, err)
	}

	verifyURL := resp.VerificationURIComplete
	if verifyURL == "" {
		verifyURL = resp.VerificationURI
	}

	prompt := Prompt{Method: MethodOneTap, URL: resp.VerificationURI, UserCode: resp.UserCode, ExpiresAt: resp.Expiry}
	if c.prompter == nil {
		return nil, fmt.Errorf("%w: no prompter for device code", ErrSignInDispatch)
	}
	if err := c.prompter.Prompt(ctx, prompt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignInDispatch, err)
	}

	if c.openBrowser != nil && verifyURL != "" {
		if err := c.openBrowser(verifyURL); err != nil {
			c.logger.Warn("failed to open verification page", "error", err)
		}
	}

	c.logger.Info("waiting for device approval", "expires", resp.Expiry)
	token, err := c.oauth.DeviceAccessToken(ctx, resp)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// DeviceAccessToken bounds polling by the code's own expiry.
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: device code expired", shared.ErrTimeout)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// StartCredentialSignIn asks the [Broker] for a stored credential from an authorized account.
func (c *Controller) StartCredentialSignIn(ctx context.Context) Outcome {
	attempt := c.session.Begin()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.broker == nil {
		return c.commit(ctx, attempt, Outcome{Method: MethodCredential, Err: fmt.Errorf("%w: no broker configured", ErrBroker)})
	}

	brokerCtx, brokerCancel := context.WithTimeout(ctx, c.brokerTimeout)
	defer brokerCancel()

	cred, err := c.broker.GetCredential(brokerCtx, CredentialRequest{
		ServerClientID:             c.serverClientID,
		FilterByAuthorizedAccounts: true,
	})
	if err != nil {
		if brokerCtx.Err() != nil {
			err = c.deadlineAfter(brokerCtx, c.brokerTimeout, err)
		} else {
			err = fmt.Errorf("%w: %w", ErrBroker, err)
		}
		return c.commit(ctx, attempt, Outcome{Method: MethodCredential, Err: err})
	}

	return c.commit(ctx, attempt, c.ProcessCredentialSignIn(cred))
}

// ProcessLegacySignIn extracts the identity from a browser sign-in token.
func (c *Controller) ProcessLegacySignIn(token *oauth2.Token) Outcome {
	return c.processToken(MethodLegacy, models.GoogleAccountType, token)
}

// ProcessOneTapSignIn extracts the identity from a device sign-in token.
func (c *Controller) ProcessOneTapSignIn(token *oauth2.Token) Outcome {
	return c.processToken(MethodOneTap, c.accountType, token)
}

func (c *Controller) processToken(m Method, accountType string, token *oauth2.Token) Outcome {
	raw, ok := idTokenFrom(token)
	if !ok {
		c.logger.Warn("sign-in payload has no ID token", "method", m, "nil", token == nil)
		return Outcome{Method: m, Err: ErrMissingPayload}
	}

	id, err := ParseIDToken(raw, accountType, c.oauth.ClientID)
	if err != nil {
		c.logger.Warn("malformed sign-in payload", "method", m, "error", err)
		return Outcome{Method: m, Err: err}
	}
	return Outcome{Method: m, Identity: id, Token: token}
}

// ProcessCredentialSignIn branches on the credential variant. Only Google ID token credentials yield an identity.
func (c *Controller) ProcessCredentialSignIn(cred Credential) Outcome {
	out := Outcome{Method: MethodCredential}

	switch cred := cred.(type) {
	case CustomCredential:
		if cred.Type != GoogleIDTokenCredentialType {
			c.logger.Warn("unexpected custom credential", "type", cred.Type)
			out.Err = fmt.Errorf("%w: %s", ErrUnrecognizedCredential, cred.Type)
			return out
		}

		id, err := ParseIDToken(cred.Data[DataIDToken], c.accountType, c.serverClientID)
		if err != nil {
			c.logger.Warn("invalid Google ID token credential", "error", err)
			out.Err = err
			return out
		}
		out.Identity = id

		if refresh := cred.Data[DataRefreshToken]; refresh != "" {
			out.Token = (&oauth2.Token{RefreshToken: refresh}).WithExtra(map[string]any{"id_token": cred.Data[DataIDToken]})
		}
		return out
	case PasswordCredential:
		c.logger.Warn("password credentials are not supported", "id", cred.ID)
		out.Err = fmt.Errorf("%w: password", ErrUnsupportedCredential)
	case PublicKeyCredential:
		c.logger.Warn("passkey credentials are not supported")
		out.Err = fmt.Errorf("%w: public key", ErrUnsupportedCredential)
	case nil:
		out.Err = ErrMissingPayload
	default:
		c.logger.Warn("unexpected credential", "type", fmt.Sprintf("%T", cred))
		out.Err = fmt.Errorf("%w: %T", ErrUnrecognizedCredential, cred)
	}
	return out
}

// commit applies an outcome to the session and persists successful sign-ins.
//
// Persistence failures are logged and do not turn a sign-in into a failure.
func (c *Controller) commit(ctx context.Context, attempt session.Attempt, out Outcome) Outcome {
	if out.Err != nil {
		if err := c.session.SaveLoginFailure(attempt, out.Err); err != nil {
			c.logger.Debug("failure not recorded", "method", out.Method, "error", err)
		}
		return out
	}

	if err := c.session.SaveLoginSuccess(attempt, out.Identity); err != nil {
		out.Err = err
		return out
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if c.accounts != nil {
		if err := c.accounts.SaveAccount(persistCtx, out.Identity); err != nil {
			c.logger.Error("failed to save account preference", "account", out.Identity.Name, "error", err)
		}
	}
	if c.tokens != nil && out.Token != nil {
		if err := c.tokens.Save(persistCtx, out.Identity, out.Token); err != nil {
			c.logger.Error("failed to save token", "account", out.Identity.Name, "error", err)
		}
	}
	return out
}

// deadline maps an expired sign-in context to [shared.ErrTimeout].
func (c *Controller) deadline(ctx context.Context, err error) error {
	return c.deadlineAfter(ctx, c.timeout, err)
}

func (c *Controller) deadlineAfter(ctx context.Context, d time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: sign-in did not complete within %s", shared.ErrTimeout, d)
	}
	return err
}

// TokenSource returns a refreshing token source for id. Refreshed tokens are written back to the store.
func (c *Controller) TokenSource(ctx context.Context, id models.Identity) (oauth2.TokenSource, error) {
	if c.tokens == nil {
		return nil, fmt.Errorf("%w: no token store", shared.ErrNotAuthenticated)
	}

	token, err := c.tokens.Get(ctx, id.Name)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: no token for %s", shared.ErrNotAuthenticated, id.Name)
	}
	if err != nil {
		return nil, err
	}

	src := &persistingSource{
		base:   c.oauth.TokenSource(ctx, token),
		store:  c.tokens,
		id:     id,
		last:   token.AccessToken,
		logger: c.logger,
	}
	return oauth2.ReuseTokenSource(token, src), nil
}

// SignOut resets the session and forgets the stored account and its token.
func (c *Controller) SignOut(ctx context.Context) error {
	snap := c.session.Current()
	c.session.Reset()

	var errs []error
	if c.accounts != nil {
		if err := c.accounts.Clear(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.tokens != nil && snap.Identity.Valid() {
		if err := c.tokens.Delete(ctx, snap.Identity.Name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type persistingSource struct {
	base   oauth2.TokenSource
	store  TokenStore
	id     models.Identity
	last   string
	logger *log.Logger
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := s.store.Save(ctx, s.id, token); err != nil {
			s.logger.Warn("failed to save refreshed token", "account", s.id.Name, "error", err)
		}
	}
	return token, nil
}
