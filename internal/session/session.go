// package session holds the process-wide record of who is signed in.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/shared"
)

// State is the session-level sign-in state.
type State int

const (
	Unauthenticated State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Source records where the held identity came from.
type Source int

const (
	SourceNone Source = iota
	SourceRestored
	SourceInteractive
)

// ErrStaleAttempt is returned when a sign-in completes after a newer attempt has begun.
var ErrStaleAttempt = errors.New("sign-in attempt superseded")

// Attempt identifies one sign-in attempt started with [Holder.Begin].
type Attempt uint64

// Snapshot is an immutable copy of the session.
type Snapshot struct {
	State     State
	Identity  models.Identity
	LastError error
	Source    Source
}

// SignedIn reports whether the snapshot holds a usable identity.
func (s Snapshot) SignedIn() bool {
	return s.State == Authenticated && s.Identity.Valid()
}

// Holder is the single writer of session state.
//
// Precedence: an interactive result always replaces a restored identity, and a restore never replaces an
// interactive identity. A restore arriving while an attempt is in flight is held back and only applied if that
// attempt fails. Only the most recent attempt may commit.
type Holder struct {
	mu       sync.Mutex
	snap     Snapshot
	attempt  Attempt
	inflight bool
	pending  *models.Identity
	subs     map[int]chan Snapshot
	nextSub  int
	logger   *log.Logger
}

// New returns an unauthenticated [Holder].
func New(logger *log.Logger) *Holder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Holder{
		subs:   make(map[int]chan Snapshot),
		logger: shared.WithLogger(logger, "component", "session"),
	}
}

// Current returns the current snapshot.
func (h *Holder) Current() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}

// Subscribe streams snapshots: the current one immediately, then every change.
//
// A slow subscriber only sees the latest snapshot. The channel is closed when ctx is done.
func (h *Holder) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	ch <- h.snap
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	}()

	return ch
}

// Begin moves the session to Authenticating and returns the new attempt.
//
// Any attempt begun earlier is superseded.
func (h *Holder) Begin() Attempt {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.attempt++
	h.inflight = true
	h.snap.State = Authenticating
	h.publish()

	h.logger.Debug("sign-in started", "attempt", h.attempt)
	return h.attempt
}

// SaveLoginSuccess commits id, with surrounding whitespace trimmed, for attempt a.
//
// An invalid identity is recorded as a failure instead. Superseded attempts return [ErrStaleAttempt].
func (h *Holder) SaveLoginSuccess(a Attempt, id models.Identity) error {
	id = models.NewIdentity(id.Name, id.Type)
	if err := id.Validate(); err != nil {
		err = fmt.Errorf("%w: %v", shared.ErrInvalidIdentity, err)
		if ferr := h.SaveLoginFailure(a, err); ferr != nil {
			return ferr
		}
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if a != h.attempt {
		h.logger.Warn("dropping superseded sign-in", "attempt", a, "current", h.attempt)
		return ErrStaleAttempt
	}

	h.inflight = false
	h.pending = nil
	h.snap = Snapshot{State: Authenticated, Identity: id, Source: SourceInteractive}
	h.publish()

	h.logger.Info("signed in", "account", id.Name, "type", id.Type)
	return nil
}

// SaveLoginFailure records err for attempt a without touching the held identity.
//
// err may be nil when the sign-in ended without a reason.
func (h *Holder) SaveLoginFailure(a Attempt, err error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if a != h.attempt {
		h.logger.Warn("dropping superseded sign-in failure", "attempt", a, "current", h.attempt, "error", err)
		return ErrStaleAttempt
	}

	if err == nil {
		err = shared.ErrAuthFailed
	}

	h.inflight = false
	h.snap.LastError = err
	if h.pending != nil && !h.snap.Identity.Valid() {
		h.snap.Identity = *h.pending
		h.snap.Source = SourceRestored
		h.logger.Info("session restored after failed sign-in", "account", h.pending.Name)
	}
	h.pending = nil
	if h.snap.Identity.Valid() {
		h.snap.State = Authenticated
	} else {
		h.snap.State = Unauthenticated
	}
	h.publish()

	h.logger.Warn("sign-in failed", "error", err)
	return nil
}

// Restore adopts a persisted identity unless an interactive sign-in has already committed one.
//
// The first restored identity wins. While an attempt is in flight the identity is held back and applied only
// if that attempt fails. It reports whether the identity was adopted or held back.
func (h *Holder) Restore(id models.Identity) bool {
	id = models.NewIdentity(id.Name, id.Type)
	if !id.Valid() {
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.snap.Source != SourceNone {
		h.logger.Debug("skipping restore", "source", h.snap.Source)
		return false
	}

	if h.inflight {
		h.pending = &id
		h.logger.Debug("holding restore until sign-in completes", "account", id.Name)
		return true
	}

	h.snap = Snapshot{State: Authenticated, Identity: id, Source: SourceRestored}
	h.publish()

	h.logger.Info("session restored", "account", id.Name)
	return true
}

// RestoreFrom consumes identities from stream and offers the first valid one to [Holder.Restore].
//
// It returns when that happens, the stream ends or ctx is done, reporting whether the identity was accepted.
func (h *Holder) RestoreFrom(ctx context.Context, stream <-chan models.Identity) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case id, ok := <-stream:
			if !ok {
				return false
			}
			if id.Valid() {
				return h.Restore(id)
			}
		}
	}
}

// Reset signs out and supersedes any in-flight attempt.
func (h *Holder) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.attempt++
	h.inflight = false
	h.pending = nil
	h.snap = Snapshot{State: Unauthenticated}
	h.publish()

	h.logger.Info("signed out")
}

// publish delivers the current snapshot to every subscriber, replacing any undelivered one.
// Callers hold h.mu.
func (h *Holder) publish() {
	for _, ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		ch <- h.snap
	}
}
