package secrets

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/99designs/keyring"
	"golang.org/x/term"

	"github.com/steipete/sheetrecords/internal/config"
)

const (
	keyringBackendEnv  = "SHEETRECORDS_KEYRING_BACKEND"
	keyringPasswordEnv = "SHEETRECORDS_KEYRING_PASSWORD"

	defaultAccountKey = "default_account"
	// errSecInteractionNotAllowed is the macOS Security framework code for a locked keychain.
	errSecInteractionNotAllowed = "-25308"
)

var (
	errInvalidKeyringBackend = errors.New("invalid keyring backend")
	errNoTTY                 = errors.New("no TTY available for keyring password; set " + keyringPasswordEnv)
	errMissingName           = errors.New("missing account name")
)

// Store keeps service account credentials under a short account name.
type Store interface {
	Keys() ([]string, error)
	SetCredentials(name string, c Credentials) error
	GetCredentials(name string) (Credentials, error)
	DeleteCredentials(name string) error
	ListCredentials() ([]Credentials, error)
	GetDefaultAccount() (string, error)
	SetDefaultAccount(name string) error
}

type KeyringStore struct {
	ring keyring.Keyring
}

type Credentials struct {
	Name        string    `json:"name"`
	ClientEmail string    `json:"client_email,omitempty"`
	ProjectID   string    `json:"project_id,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	JSON        []byte    `json:"-"`
}

func OpenDefault() (Store, error) {
	// Without an OS keychain (Linux containers, CI) keyring falls back to the
	// file backend, which needs a directory and a password source.
	keyringDir, err := config.EnsureKeyringDir()
	if err != nil {
		return nil, err
	}
	backends, err := allowedBackendsFromEnv()
	if err != nil {
		return nil, err
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:      config.AppName,
		AllowedBackends:  backends,
		FileDir:          keyringDir,
		FilePasswordFunc: fileKeyringPasswordFunc(),
	})
	if err != nil {
		return nil, wrapKeychainError(err)
	}
	return &KeyringStore{ring: ring}, nil
}

// NewKeyringStore wraps an already opened keyring.
func NewKeyringStore(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

// allowedBackendsFromEnv reads the backend from the environment, then from
// the config file's keyring_backend.
func allowedBackendsFromEnv() ([]keyring.BackendType, error) {
	setting := os.Getenv(keyringBackendEnv)
	if strings.TrimSpace(setting) == "" {
		if cfg, err := config.ReadConfig(); err == nil {
			setting = cfg.KeyringBackend
		}
	}

	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "", "auto":
		return nil, nil
	case "keychain":
		return []keyring.BackendType{keyring.KeychainBackend}, nil
	case "secret-service":
		return []keyring.BackendType{keyring.SecretServiceBackend}, nil
	case "file":
		return []keyring.BackendType{keyring.FileBackend}, nil
	default:
		return nil, fmt.Errorf("%w %q (expected auto|keychain|secret-service|file)", errInvalidKeyringBackend, setting)
	}
}

func fileKeyringPasswordFunc() keyring.PromptFunc {
	return fileKeyringPasswordFuncFrom(os.Getenv(keyringPasswordEnv), term.IsTerminal(int(os.Stdin.Fd())))
}

func fileKeyringPasswordFuncFrom(password string, tty bool) keyring.PromptFunc {
	if password != "" {
		return keyring.FixedStringPrompt(password)
	}
	if tty {
		return keyring.TerminalPrompt
	}
	return func(string) (string, error) {
		return "", errNoTTY
	}
}

func wrapKeychainError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), errSecInteractionNotAllowed) {
		return fmt.Errorf("%w\n\nThe macOS keychain is locked. Unlock it with:\n  security unlock-keychain ~/Library/Keychains/login.keychain-db", err)
	}
	return err
}

func (s *KeyringStore) Keys() ([]string, error) {
	return s.ring.Keys()
}

type storedCredentials struct {
	JSON        json.RawMessage `json:"json"`
	ClientEmail string          `json:"client_email,omitempty"`
	ProjectID   string          `json:"project_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitempty"`
}

// SetCredentials stores a credentials JSON document. ClientEmail and
// ProjectID are filled from the document when empty.
func (s *KeyringStore) SetCredentials(name string, c Credentials) error {
	name = normalize(name)
	if name == "" {
		return errMissingName
	}
	if len(c.JSON) == 0 {
		return fmt.Errorf("missing credentials")
	}

	var doc struct {
		ClientEmail string `json:"client_email"`
		ProjectID   string `json:"project_id"`
	}
	if err := json.Unmarshal(c.JSON, &doc); err != nil {
		return fmt.Errorf("credentials are not JSON: %w", err)
	}
	if c.ClientEmail == "" {
		c.ClientEmail = doc.ClientEmail
	}
	if c.ProjectID == "" {
		c.ProjectID = doc.ProjectID
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(storedCredentials{
		JSON:        c.JSON,
		ClientEmail: c.ClientEmail,
		ProjectID:   c.ProjectID,
		CreatedAt:   c.CreatedAt,
	})
	if err != nil {
		return err
	}

	return wrapKeychainError(s.ring.Set(keyring.Item{
		Key:  credentialsKey(name),
		Data: payload,
	}))
}

func (s *KeyringStore) GetCredentials(name string) (Credentials, error) {
	name = normalize(name)
	if name == "" {
		return Credentials{}, errMissingName
	}
	it, err := s.ring.Get(credentialsKey(name))
	if err != nil {
		return Credentials{}, wrapKeychainError(err)
	}
	var st storedCredentials
	if err := json.Unmarshal(it.Data, &st); err != nil {
		return Credentials{}, err
	}
	return Credentials{
		Name:        name,
		ClientEmail: st.ClientEmail,
		ProjectID:   st.ProjectID,
		CreatedAt:   st.CreatedAt,
		JSON:        st.JSON,
	}, nil
}

func (s *KeyringStore) DeleteCredentials(name string) error {
	name = normalize(name)
	if name == "" {
		return errMissingName
	}
	return s.ring.Remove(credentialsKey(name))
}

func (s *KeyringStore) ListCredentials() ([]Credentials, error) {
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	out := make([]Credentials, 0)
	for _, k := range keys {
		name, ok := ParseCredentialsKey(k)
		if !ok {
			continue
		}
		c, err := s.GetCredentials(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// GetDefaultAccount returns "" when no default is set.
func (s *KeyringStore) GetDefaultAccount() (string, error) {
	it, err := s.ring.Get(defaultAccountKey)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", wrapKeychainError(err)
	}
	return string(it.Data), nil
}

func (s *KeyringStore) SetDefaultAccount(name string) error {
	name = normalize(name)
	if name == "" {
		return errMissingName
	}
	return wrapKeychainError(s.ring.Set(keyring.Item{Key: defaultAccountKey, Data: []byte(name)}))
}

func ParseCredentialsKey(k string) (name string, ok bool) {
	const prefix = "credentials:"
	if !strings.HasPrefix(k, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(k, prefix)
	if strings.TrimSpace(rest) == "" {
		return "", false
	}
	return rest, true
}

func credentialsKey(name string) string {
	return fmt.Sprintf("credentials:%s", name)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
