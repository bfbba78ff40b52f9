// Package secret keeps credentials, such as the shared database password,
// out of the config file.
package secret

import (
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// DBPasswordKey names the database password entry.
const DBPasswordKey = "db-password"

const service = "canvasnotes"

// SecretStore is a pluggable credential store.
type SecretStore interface {
	// Set stores a secret value under the given key.
	Set(key string, value []byte) error

	// Get retrieves the secret value for the given key.
	// Returns empty slice and nil error if key does not exist.
	Get(key string) ([]byte, error)

	Delete(key string) error
}

// New returns the platform store: the macOS Keychain, the freedesktop
// secret service through secret-tool on Linux, and memory elsewhere.
func New() SecretStore {
	switch runtime.GOOS {
	case "darwin":
		return NewKeychainStore()
	case "linux":
		if _, err := exec.LookPath("secret-tool"); err == nil {
			return NewSecretToolStore()
		}
	}
	return NewMemoryStore()
}

// runner executes a CLI, feeding stdin when non-empty.
type runner func(stdin, name string, args ...string) ([]byte, error)

func execRunner(stdin, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	return cmd.Output()
}

// MemoryStore keeps secrets for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	secrets map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{secrets: map[string][]byte{}}
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.secrets[key]...), nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, key)
	return nil
}
