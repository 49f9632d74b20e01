package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"sync/atomic"

	"golang.org/x/oauth2"
)

// ErrStateMismatch is reported when the callback's state does not match the one sent to Google.
var ErrStateMismatch = errors.New("oauth state mismatch")

// CallbackError is reported when Google redirects back without a code, e.g. after the user denied consent.
type CallbackError struct {
	Reason      string // the "error" query parameter, such as "access_denied"
	Description string
}

func (e *CallbackError) Error() string {
	if e.Description == "" {
		return "authorization failed: " + e.Reason
	}
	return fmt.Sprintf("authorization failed: %s (%s)", e.Reason, e.Description)
}

// Denied reports whether the user declined the consent screen.
func (e *CallbackError) Denied() bool {
	return e.Reason == "access_denied"
}

// OAuthResult is the outcome of one authorization code redirect.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Playster · {{.Title}}</title>
<style>
  html, body { height: 100%; margin: 0; }
  body { display: grid; place-items: center; background: #0f0f0f; color: #f1f1f1;
         font: 16px/1.5 Roboto, system-ui, sans-serif; }
  main { max-width: 28rem; padding: 2rem 2.5rem; border-radius: 12px; background: #212121;
         border-top: 4px solid {{.Accent}}; }
  h1 { margin: 0 0 .5rem; font-size: 1.4rem; }
  p { margin: 0; color: #aaa; }
</style>
</head>
<body>
<main>
  <h1>{{.Title}}</h1>
  <p>{{.Message}}</p>
</main>
</body>
</html>
`))

type callbackView struct {
	Title   string
	Message string
	Accent  string
}

var (
	viewSignedIn  = callbackView{"Signed in to Playster", "You can close this tab and return to the terminal.", "#ff0033"}
	viewBadState  = callbackView{"Sign-in failed", "This sign-in link is stale or was not started by Playster.", "#ff5f5f"}
	viewDenied    = callbackView{"Sign-in cancelled", "Playster was not given access. You can close this tab.", "#ffa500"}
	viewExchange  = callbackView{"Sign-in failed", "Google did not accept the authorization code.", "#ff5f5f"}
	viewProcessed = callbackView{"Already signed in", "This sign-in was already completed.", "#626262"}
)

// OAuthHandler serves the loopback redirect of an authorization code sign-in.
//
// It checks state, exchanges the code with the configured options (the PKCE verifier) and
// delivers exactly one [OAuthResult]. Every request after the first is rejected.
type OAuthHandler struct {
	ctx     context.Context
	config  *oauth2.Config
	state   string
	opts    []oauth2.AuthCodeOption
	results chan OAuthResult
	once    sync.Once
	hit     atomic.Bool
}

// NewOAuthHandler creates a handler expecting state. ctx is used for the token exchange,
// so an [oauth2.HTTPClient] value on it is honored.
func NewOAuthHandler(ctx context.Context, config *oauth2.Config, state string, opts ...oauth2.AuthCodeOption) *OAuthHandler {
	return &OAuthHandler{
		ctx:     ctx,
		config:  config,
		state:   state,
		opts:    opts,
		results: make(chan OAuthResult, 1),
	}
}

// Routes returns the redirect path registered with Google.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.hit.Swap(true) {
		h.render(w, http.StatusBadRequest, viewProcessed)
		return
	}

	query := r.URL.Query()
	if query.Get("state") != h.state {
		h.Send(OAuthResult{err: ErrStateMismatch})
		h.render(w, http.StatusBadRequest, viewBadState)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.Send(OAuthResult{err: &CallbackError{Reason: query.Get("error"), Description: query.Get("error_description")}})
		h.render(w, http.StatusBadRequest, viewDenied)
		return
	}

	token, err := h.config.Exchange(h.ctx, code, h.opts...)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		h.render(w, http.StatusBadGateway, viewExchange)
		return
	}

	h.Send(OAuthResult{Token: token})
	h.render(w, http.StatusOK, viewSignedIn)
}

func (h *OAuthHandler) render(w http.ResponseWriter, status int, view callbackView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = callbackPage.Execute(w, view)
}

// Send delivers result unless one was already delivered.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result yields exactly one [OAuthResult] and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}
