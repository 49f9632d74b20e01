package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// GoogleIDTokenCredentialType is the custom credential type that carries a Google ID token.
const GoogleIDTokenCredentialType = "com.google.android.libraries.identity.googleid.TYPE_GOOGLE_ID_TOKEN_CREDENTIAL"

// Keys of [CustomCredential.Data] for Google ID token credentials.
const (
	DataIDToken      = "id_token"
	DataRefreshToken = "refresh_token"
)

// CredentialRequest is what a sign-in asks the [Broker] for.
type CredentialRequest struct {
	ServerClientID             string
	FilterByAuthorizedAccounts bool
}

// Credential is one of [PasswordCredential], [PublicKeyCredential] or [CustomCredential].
type Credential interface {
	credential()
}

type PasswordCredential struct {
	ID       string
	Password string
}

type PublicKeyCredential struct {
	AuthenticationResponseJSON string
}

// CustomCredential is an opaque typed credential. Only [GoogleIDTokenCredentialType] is understood.
type CustomCredential struct {
	Type string
	Data map[string]string
}

func (PasswordCredential) credential()  {}
func (PublicKeyCredential) credential() {}
func (CustomCredential) credential()    {}

// Broker hands out a stored credential matching a request.
type Broker interface {
	GetCredential(ctx context.Context, req CredentialRequest) (Credential, error)
}

// Kinds of [StoredCredential].
const (
	KindPassword  = "password"
	KindPublicKey = "public_key"
	KindCustom    = "custom"
)

// StoredCredential is one entry of the credentials file.
type StoredCredential struct {
	Kind       string            `json:"kind"`
	Authorized bool              `json:"authorized"`
	ID         string            `json:"id,omitempty"`
	Password   string            `json:"password,omitempty"`
	Response   string            `json:"response,omitempty"`
	Type       string            `json:"type,omitempty"`
	Data       map[string]string `json:"data,omitempty"`
}

func (s StoredCredential) credential() (Credential, error) {
	switch s.Kind {
	case KindPassword:
		return PasswordCredential{ID: s.ID, Password: s.Password}, nil
	case KindPublicKey:
		return PublicKeyCredential{AuthenticationResponseJSON: s.Response}, nil
	case KindCustom:
		return CustomCredential{Type: s.Type, Data: s.Data}, nil
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnrecognizedCredential, s.Kind)
	}
}

type credentialsFile struct {
	Credentials []StoredCredential `json:"credentials"`
}

// FileBroker is a [Broker] backed by a JSON file of stored credentials.
//
// A missing file is the same as an empty one.
type FileBroker struct {
	path string
	mu   sync.Mutex
}

// NewFileBroker creates a [FileBroker] reading path.
func NewFileBroker(path string) *FileBroker {
	return &FileBroker{path: path}
}

// Path returns the credentials file location.
func (b *FileBroker) Path() string {
	return b.path
}

// GetCredential returns the first stored credential matching req, or [ErrNoCredential].
func (b *FileBroker) GetCredential(ctx context.Context, req CredentialRequest) (Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := b.load()
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if req.FilterByAuthorizedAccounts && !entry.Authorized {
			continue
		}
		return entry.credential()
	}
	return nil, ErrNoCredential
}

// Add appends entry to the credentials file, creating it when needed.
func (b *FileBroker) Add(ctx context.Context, entry StoredCredential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := b.readLocked()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(credentialsFile{Credentials: entries}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0700); err != nil {
		return fmt.Errorf("failed to create credentials directory: %w", err)
	}
	if err := os.WriteFile(b.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}
	return nil
}

func (b *FileBroker) load() ([]StoredCredential, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.readLocked()
}

func (b *FileBroker) readLocked() ([]StoredCredential, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	var file credentialsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return file.Credentials, nil
}
