// Package macos stores credentials as generic password items in the macOS
// keychain.
//
// Each operation resolves the default keychain of the credential's domain,
// makes a single native request against it and releases the keychain before
// returning. Native status codes are translated into credential error kinds;
// nothing is retried or logged here.
package macos

import (
	"unicode/utf8"

	"github.com/benaskins/latch/internal/credential"
	"github.com/benaskins/latch/internal/keychain"
)

// Adapter serves credential.MacCredential descriptors.
type Adapter struct {
	client keychain.Client
}

// New returns an adapter that issues native calls through client.
func New(client keychain.Client) *Adapter {
	return &Adapter{client: client}
}

// NewSystem returns an adapter on the running machine's keychain services.
func NewSystem() *Adapter {
	return New(keychain.NewSystemClient())
}

func (a *Adapter) Platform() credential.Platform {
	return credential.PlatformMacOS
}

// SetPassword stores password under the credential's service and account,
// replacing any existing value.
func (a *Adapter) SetPassword(cred credential.PlatformCredential, password string) error {
	mac, err := macCredential(cred)
	if err != nil {
		return err
	}
	kc, err := a.keychainFor(mac)
	if err != nil {
		return err
	}
	defer kc.Close()

	if err := kc.SetGenericPassword(mac.Service, mac.Account, []byte(password)); err != nil {
		return decodeError(err)
	}
	return nil
}

// GetPassword returns the stored password. Items written by other tools may
// hold bytes that are not UTF-8; those fail with a BadEncoding error that
// carries the raw bytes.
func (a *Adapter) GetPassword(cred credential.PlatformCredential) (string, error) {
	mac, err := macCredential(cred)
	if err != nil {
		return "", err
	}
	kc, err := a.keychainFor(mac)
	if err != nil {
		return "", err
	}
	defer kc.Close()

	data, item, err := kc.FindGenericPassword(mac.Service, mac.Account)
	if err != nil {
		return "", decodeError(err)
	}
	item.Close()

	if !utf8.Valid(data) {
		return "", credential.BadEncoding("password", data)
	}
	return string(data), nil
}

// DeletePassword removes the item permanently.
func (a *Adapter) DeletePassword(cred credential.PlatformCredential) error {
	mac, err := macCredential(cred)
	if err != nil {
		return err
	}
	kc, err := a.keychainFor(mac)
	if err != nil {
		return err
	}
	defer kc.Close()

	_, item, err := kc.FindGenericPassword(mac.Service, mac.Account)
	if err != nil {
		return decodeError(err)
	}
	defer item.Close()

	if err := item.Delete(); err != nil {
		return decodeError(err)
	}
	return nil
}

func macCredential(cred credential.PlatformCredential) (*credential.MacCredential, error) {
	mac, ok := cred.(*credential.MacCredential)
	if !ok || mac == nil {
		got := credential.Platform("none")
		if cred != nil {
			got = cred.Platform()
		}
		return nil, credential.BadCredentialMapPlatform(got, credential.PlatformMacOS)
	}
	if err := mac.Validate(); err != nil {
		return nil, err
	}
	return mac, nil
}

// keychainFor opens the default keychain of the credential's domain. The
// caller closes it.
func (a *Adapter) keychainFor(mac *credential.MacCredential) (keychain.Keychain, error) {
	kc, err := a.client.DefaultKeychain(nativeDomain(mac.Domain))
	if err != nil {
		return nil, decodeError(err)
	}
	return kc, nil
}

func nativeDomain(d credential.MacKeychainDomain) keychain.Domain {
	switch d {
	case credential.DomainSystem:
		return keychain.DomainSystem
	case credential.DomainCommon:
		return keychain.DomainCommon
	case credential.DomainDynamic:
		return keychain.DomainDynamic
	default:
		return keychain.DomainUser
	}
}

// decodeError maps a native failure onto a credential error kind. Codes
// from SecBase.h:
//
//	-25291 errSecNotAvailable     NoStorageAccess
//	-25292 errSecReadOnly         NoStorageAccess
//	-25294 errSecNoSuchKeychain   NoStorageAccess
//	-25295 errSecInvalidKeychain  NoStorageAccess
//	-25300 errSecItemNotFound     NoEntry
//	anything else                 PlatformFailure
func decodeError(err error) error {
	code, ok := keychain.Code(err)
	if !ok {
		return credential.NewPlatformError(credential.KindPlatformFailure, err)
	}
	switch code {
	case keychain.StatusNotAvailable,
		keychain.StatusReadOnly,
		keychain.StatusNoSuchKeychain,
		keychain.StatusInvalidKeychain:
		return credential.NewPlatformError(credential.KindNoStorageAccess, err)
	case keychain.StatusItemNotFound:
		return credential.NewPlatformError(credential.KindNoEntry, err)
	default:
		return credential.NewPlatformError(credential.KindPlatformFailure, err)
	}
}
