package keychain

import (
	"bytes"
	"testing"
)

func openUser(t *testing.T, c *MemoryClient) Keychain {
	t.Helper()
	kc, err := c.DefaultKeychain(DomainUser)
	if err != nil {
		t.Fatalf("DefaultKeychain: %v", err)
	}
	t.Cleanup(kc.Close)
	return kc
}

func TestMemorySetAndFind(t *testing.T) {
	c := NewMemoryClient()
	kc := openUser(t, c)

	if err := kc.SetGenericPassword("svc", "acct", []byte("hello")); err != nil {
		t.Fatalf("SetGenericPassword: %v", err)
	}

	data, item, err := kc.FindGenericPassword("svc", "acct")
	if err != nil {
		t.Fatalf("FindGenericPassword: %v", err)
	}
	defer item.Close()
	if string(data) != "hello" {
		t.Errorf("expected 'hello', got %q", data)
	}
}

func TestMemorySetOverwrites(t *testing.T) {
	c := NewMemoryClient()
	kc := openUser(t, c)

	kc.SetGenericPassword("svc", "acct", []byte("first"))
	kc.SetGenericPassword("svc", "acct", []byte("second"))

	data, item, err := kc.FindGenericPassword("svc", "acct")
	if err != nil {
		t.Fatalf("FindGenericPassword: %v", err)
	}
	item.Close()
	if string(data) != "second" {
		t.Errorf("expected 'second', got %q", data)
	}
}

func TestMemoryFindNotFound(t *testing.T) {
	c := NewMemoryClient()
	kc := openUser(t, c)

	_, _, err := kc.FindGenericPassword("svc", "missing")
	code, ok := Code(err)
	if !ok || code != StatusItemNotFound {
		t.Errorf("expected errSecItemNotFound, got %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemoryClient()
	kc := openUser(t, c)

	kc.SetGenericPassword("svc", "acct", []byte("to-delete"))
	_, item, err := kc.FindGenericPassword("svc", "acct")
	if err != nil {
		t.Fatalf("FindGenericPassword: %v", err)
	}
	if err := item.Delete(); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	item.Close()

	if _, _, err := kc.FindGenericPassword("svc", "acct"); err == nil {
		t.Error("expected error after delete")
	}
}

func TestMemoryDomainsAreIsolated(t *testing.T) {
	c := NewMemoryClient()
	user := openUser(t, c)
	user.SetGenericPassword("svc", "acct", []byte("user-secret"))

	system, err := c.DefaultKeychain(DomainSystem)
	if err != nil {
		t.Fatalf("DefaultKeychain: %v", err)
	}
	defer system.Close()

	if _, _, err := system.FindGenericPassword("svc", "acct"); err == nil {
		t.Error("item stored in user domain should not be visible in system domain")
	}
}

func TestMemoryPutKeepsRawBytes(t *testing.T) {
	c := NewMemoryClient()
	raw := []byte{0xff, 0xfe, 0x00, 0x41}
	c.Put(DomainCommon, "svc", "acct", raw)
	raw[0] = 0

	kc, _ := c.DefaultKeychain(DomainCommon)
	defer kc.Close()
	data, item, err := kc.FindGenericPassword("svc", "acct")
	if err != nil {
		t.Fatalf("FindGenericPassword: %v", err)
	}
	item.Close()
	if !bytes.Equal(data, []byte{0xff, 0xfe, 0x00, 0x41}) {
		t.Errorf("unexpected bytes %x", data)
	}
}

func TestMemoryInjectedFailures(t *testing.T) {
	c := NewMemoryClient()
	c.FailDomain(DomainSystem, StatusReadOnly)

	if _, err := c.DefaultKeychain(DomainSystem); err == nil {
		t.Fatal("expected failure for system domain")
	} else if code, _ := Code(err); code != StatusReadOnly {
		t.Errorf("expected errSecReadOnly, got %v", err)
	}

	c.Fail(OpAdd, StatusAuthFailed)
	kc := openUser(t, c)
	err := kc.SetGenericPassword("svc", "acct", []byte("x"))
	if code, _ := Code(err); code != StatusAuthFailed {
		t.Errorf("expected errSecAuthFailed, got %v", err)
	}
	if got := c.Accounts(DomainUser, "svc"); len(got) != 0 {
		t.Errorf("failed add should store nothing, got %v", got)
	}
}

func TestMemoryHandleAccounting(t *testing.T) {
	c := NewMemoryClient()
	kc, _ := c.DefaultKeychain(DomainUser)
	kc.SetGenericPassword("svc", "acct", []byte("x"))
	_, item, _ := kc.FindGenericPassword("svc", "acct")

	if c.OpenHandles() != 2 {
		t.Errorf("expected 2 open handles, got %d", c.OpenHandles())
	}
	item.Close()
	item.Close()
	kc.Close()
	if c.OpenHandles() != 0 {
		t.Errorf("expected 0 open handles, got %d", c.OpenHandles())
	}
	// DefaultKeychain + Add + Find
	if c.Calls() != 3 {
		t.Errorf("expected 3 calls, got %d", c.Calls())
	}
}

func TestMemoryAccountsSorted(t *testing.T) {
	c := NewMemoryClient()
	kc := openUser(t, c)
	for _, a := range []string{"c", "a", "b"} {
		kc.SetGenericPassword("svc", a, []byte("val"))
	}
	kc.SetGenericPassword("other", "z", []byte("val"))

	got := c.Accounts(DomainUser, "svc")
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Accounts[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
