package secret

import (
	"errors"
	"reflect"
	"testing"
)

type call struct {
	stdin string
	argv  []string
}

func fakeRunner(out string, err error, calls *[]call) runner {
	return func(stdin, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, call{stdin, append([]string{name}, args...)})
		return []byte(out), err
	}
}

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	if v, err := m.Get(DBPasswordKey); err != nil || len(v) != 0 {
		t.Fatalf("missing key = %q, %v", v, err)
	}
	m.Set(DBPasswordKey, []byte("pw"))
	if v, _ := m.Get(DBPasswordKey); string(v) != "pw" {
		t.Errorf("Get = %q", v)
	}
	m.Delete(DBPasswordKey)
	if v, _ := m.Get(DBPasswordKey); len(v) != 0 {
		t.Errorf("after Delete = %q", v)
	}
}

func TestKeychainStore_Commands(t *testing.T) {
	var calls []call
	k := &KeychainStore{run: fakeRunner("hunter2\n", nil, &calls)}

	if err := k.Set("db-password", []byte("hunter2")); err != nil {
		t.Fatal(err)
	}
	v, err := k.Get("db-password")
	if err != nil || string(v) != "hunter2" {
		t.Fatalf("Get = %q, %v", v, err)
	}

	want := []string{"security", "add-generic-password", "-a", "db-password", "-s", "canvasnotes", "-w", "hunter2", "-U"}
	if !reflect.DeepEqual(calls[0].argv, want) {
		t.Errorf("set argv = %v", calls[0].argv)
	}
	if calls[1].argv[1] != "find-generic-password" {
		t.Errorf("get argv = %v", calls[1].argv)
	}
}

func TestSecretToolStore_PassesValueOnStdin(t *testing.T) {
	var calls []call
	s := &SecretToolStore{run: fakeRunner("", nil, &calls)}

	if err := s.Set("db-password", []byte("hunter2")); err != nil {
		t.Fatal(err)
	}
	if calls[0].stdin != "hunter2" {
		t.Errorf("stdin = %q", calls[0].stdin)
	}
	for _, a := range calls[0].argv {
		if a == "hunter2" {
			t.Fatal("secret leaked into argv")
		}
	}
}

func TestSecretToolStore_GetError(t *testing.T) {
	var calls []call
	s := &SecretToolStore{run: fakeRunner("", errors.New("dbus unavailable"), &calls)}
	if _, err := s.Get("db-password"); err == nil {
		t.Fatal("expected error")
	}
}
