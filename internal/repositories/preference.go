package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playster/internal/models"
	"github.com/desertthunder/playster/internal/shared"
)

const (
	KeyAccountName = "account_name"
	KeyAccountType = "account_type"
)

// PreferenceStore persists the signed-in account as two string preferences.
//
// Watchers are notified after every committed write.
type PreferenceStore struct {
	db       *sql.DB
	logger   *log.Logger
	mu       sync.Mutex
	watchers map[int]chan struct{}
	nextID   int
}

// NewPreferenceStore creates a new [PreferenceStore] with the given database connection.
//
// A nil logger discards watch errors.
func NewPreferenceStore(db *sql.DB, logger *log.Logger) *PreferenceStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &PreferenceStore{
		db:       db,
		logger:   shared.WithLogger(logger, "component", "preferences"),
		watchers: make(map[int]chan struct{}),
	}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get returns the value stored under key, or "" when the key is unset.
func (s *PreferenceStore) Get(ctx context.Context, key string) (string, error) {
	return get(ctx, s.db, key)
}

func get(ctx context.Context, q queryer, key string) (string, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query preference %s: %w", key, err)
	}
	return value, nil
}

// Account returns the stored identity. ok is false unless both fields are non-blank.
//
// Both keys are read in one transaction.
func (s *PreferenceStore) Account(ctx context.Context) (models.Identity, bool, error) {
	var name, accountType string
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		if name, err = get(ctx, tx, KeyAccountName); err != nil {
			return err
		}
		accountType, err = get(ctx, tx, KeyAccountType)
		return err
	})
	if err != nil {
		return models.Identity{}, false, fmt.Errorf("failed to read account: %w", err)
	}

	id := models.NewIdentity(name, accountType)
	return id, id.Valid(), nil
}

// SaveAccount trims both account fields and writes them in one transaction.
func (s *PreferenceStore) SaveAccount(ctx context.Context, id models.Identity) error {
	id = models.NewIdentity(id.Name, id.Type)
	if err := id.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidIdentity, err)
	}

	query := `
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	now := time.Now()
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, kv := range [][2]string{{KeyAccountName, id.Name}, {KeyAccountType, id.Type}} {
			if _, err := tx.ExecContext(ctx, query, kv[0], kv[1], now); err != nil {
				return fmt.Errorf("failed to write preference %s: %w", kv[0], err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// Clear removes both account fields in one transaction.
func (s *PreferenceStore) Clear(ctx context.Context) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "DELETE FROM preferences WHERE key IN (?, ?)", KeyAccountName, KeyAccountType)
		if err != nil {
			return fmt.Errorf("failed to clear account: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.notify()
	return nil
}

// Watch streams the stored identity: once on subscription and again after every write.
//
// The identity may be invalid (nothing stored yet). Only the latest value is delivered to a slow reader.
// The channel is closed when ctx is done.
func (s *PreferenceStore) Watch(ctx context.Context) <-chan models.Identity {
	out := make(chan models.Identity, 1)
	changed := make(chan struct{}, 1)
	changed <- struct{}{}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = changed
	s.mu.Unlock()

	go func() {
		defer close(out)
		defer func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case <-changed:
			}

			identity, _, err := s.Account(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.logger.Warn("failed to read account for watcher", "error", err)
				}
				continue
			}

			select {
			case <-out:
			default:
			}
			select {
			case out <- identity:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (s *PreferenceStore) notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
