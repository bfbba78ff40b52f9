package secret

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// KeychainStore implements SecretStore using the macOS Keychain
// via the `security` CLI tool.
type KeychainStore struct {
	run runner
}

func NewKeychainStore() *KeychainStore {
	return &KeychainStore{run: execRunner}
}

// Set stores a secret, replacing any existing value.
func (k *KeychainStore) Set(key string, value []byte) error {
	out, err := k.run("", "security", "add-generic-password",
		"-a", key,
		"-s", service,
		"-w", string(value),
		"-U", // update if exists
	)
	if err != nil {
		return fmt.Errorf("keychain set: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get returns nil when the item does not exist.
func (k *KeychainStore) Get(key string) ([]byte, error) {
	out, err := k.run("", "security", "find-generic-password",
		"-a", key,
		"-s", service,
		"-w", // output only the password
	)
	if err != nil {
		// "security" returns exit code 44 when item not found
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 44 {
			return nil, nil
		}
		return nil, fmt.Errorf("keychain get: %w", err)
	}
	return []byte(strings.TrimSpace(string(out))), nil
}

func (k *KeychainStore) Delete(key string) error {
	// the item may not exist
	k.run("", "security", "delete-generic-password", "-a", key, "-s", service)
	return nil
}

// SecretToolStore implements SecretStore with libsecret's secret-tool,
// which talks to GNOME Keyring or KWallet.
type SecretToolStore struct {
	run runner
}

func NewSecretToolStore() *SecretToolStore {
	return &SecretToolStore{run: execRunner}
}

func (s *SecretToolStore) Set(key string, value []byte) error {
	out, err := s.run(string(value), "secret-tool", "store",
		"--label", service+" "+key,
		"service", service,
		"account", key,
	)
	if err != nil {
		return fmt.Errorf("secret-tool store: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// Get returns nil when the item does not exist; secret-tool exits 1 for
// that case.
func (s *SecretToolStore) Get(key string) ([]byte, error) {
	out, err := s.run("", "secret-tool", "lookup", "service", service, "account", key)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return nil, nil
		}
		return nil, fmt.Errorf("secret-tool lookup: %w", err)
	}
	return []byte(strings.TrimRight(string(out), "\n")), nil
}

func (s *SecretToolStore) Delete(key string) error {
	s.run("", "secret-tool", "clear", "service", service, "account", key)
	return nil
}
