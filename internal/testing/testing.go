// Package testing holds test doubles and helpers shared by playster's package tests.
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/playster/internal/models"
)

// ErrWriteFailed is returned by [FailingWriter] once its budget is spent.
var ErrWriteFailed = errors.New("write failed")

// MockPlaylistService is a test double for [services.PlaylistService].
//
// It records the identity of every call and returns Playlists or Err.
type MockPlaylistService struct {
	mu        sync.Mutex
	Playlists []models.Playlist
	Err       error
	Calls     []models.Identity
}

func (m *MockPlaylistService) ListPlaylists(ctx context.Context, id models.Identity) ([]models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, id)
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]models.Playlist(nil), m.Playlists...), nil
}

func (m *MockPlaylistService) Name() string { return "mock" }

// CallCount returns how many times ListPlaylists ran.
func (m *MockPlaylistService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// FailingWriter passes the first Allow writes to Target (or discards them) and fails every write after.
type FailingWriter struct {
	Allow  int
	Target io.Writer
	writes int
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	if w.writes >= w.Allow {
		return 0, ErrWriteFailed
	}
	w.writes++
	if w.Target == nil {
		return len(p), nil
	}
	return w.Target.Write(p)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
