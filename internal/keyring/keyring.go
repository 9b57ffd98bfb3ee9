// Package keyring is the platform-independent entry point for credentials.
//
// An Entry pairs a credential descriptor with the adapter for the running
// platform. The adapter is chosen at build time (see default_*.go) and can
// be replaced with WithAdapter.
package keyring

import (
	"github.com/benaskins/latch/internal/credential"
)

// Adapter performs credential operations against one platform's native store.
type Adapter interface {
	Platform() credential.Platform
	SetPassword(cred credential.PlatformCredential, password string) error
	GetPassword(cred credential.PlatformCredential) (string, error)
	DeletePassword(cred credential.PlatformCredential) error
}

// Store is the operation set shared by Entry and AuditedEntry.
type Store interface {
	SetPassword(password string) error
	GetPassword() (string, error)
	DeletePassword() error
	Credential() credential.PlatformCredential
}

// Entry is a single credential in the platform store.
type Entry struct {
	cred    credential.PlatformCredential
	adapter Adapter
}

// Option configures an Entry.
type Option func(*Entry)

// WithAdapter replaces the platform default adapter.
func WithAdapter(a Adapter) Option {
	return func(e *Entry) { e.adapter = a }
}

// New returns an entry for service and user using the running platform's
// default descriptor.
func New(service, user string, opts ...Option) *Entry {
	return NewWithCredential(credential.Default(credential.Current(), service, user), opts...)
}

// NewWithDomain returns an entry for a generic password item in the default
// keychain of a macOS domain.
func NewWithDomain(domain credential.MacKeychainDomain, service, account string, opts ...Option) *Entry {
	return NewWithCredential(&credential.MacCredential{
		Domain:  domain,
		Service: service,
		Account: account,
	}, opts...)
}

// NewWithCredential returns an entry for an explicit descriptor. A descriptor
// for another platform is accepted here and rejected by the adapter on use.
func NewWithCredential(cred credential.PlatformCredential, opts ...Option) *Entry {
	e := &Entry{cred: cred, adapter: defaultAdapter()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Credential returns the descriptor this entry operates on.
func (e *Entry) Credential() credential.PlatformCredential {
	return e.cred
}

func (e *Entry) SetPassword(password string) error {
	return e.adapter.SetPassword(e.cred, password)
}

func (e *Entry) GetPassword() (string, error) {
	return e.adapter.GetPassword(e.cred)
}

func (e *Entry) DeletePassword() error {
	return e.adapter.DeletePassword(e.cred)
}
