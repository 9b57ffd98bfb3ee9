// Package generic serves Windows, Linux and iOS descriptors through the
// operating system keyring exposed by github.com/zalando/go-keyring.
//
// go-keyring addresses secrets by a service/user pair only, so each
// descriptor is reduced to that pair with credential.Identity.
package generic

import (
	"errors"
	"unicode/utf8"

	"github.com/zalando/go-keyring"

	"github.com/benaskins/latch/internal/credential"
)

// Password size limits reported by go-keyring's ErrSetDataTooBig.
const (
	windowsPasswordLimit = 2560
	defaultItemLimit     = 3000
)

// Adapter serves descriptors of a single non-macOS platform.
type Adapter struct {
	platform credential.Platform
}

// New returns an adapter for descriptors of platform p.
func New(p credential.Platform) *Adapter {
	return &Adapter{platform: p}
}

func (a *Adapter) Platform() credential.Platform {
	return a.platform
}

func (a *Adapter) SetPassword(cred credential.PlatformCredential, password string) error {
	service, user, err := a.identity(cred)
	if err != nil {
		return err
	}
	if err := keyring.Set(service, user, password); err != nil {
		return a.decodeError(err)
	}
	return nil
}

func (a *Adapter) GetPassword(cred credential.PlatformCredential) (string, error) {
	service, user, err := a.identity(cred)
	if err != nil {
		return "", err
	}
	password, err := keyring.Get(service, user)
	if err != nil {
		return "", a.decodeError(err)
	}
	if !utf8.ValidString(password) {
		return "", credential.BadEncoding("password", []byte(password))
	}
	return password, nil
}

func (a *Adapter) DeletePassword(cred credential.PlatformCredential) error {
	service, user, err := a.identity(cred)
	if err != nil {
		return err
	}
	if err := keyring.Delete(service, user); err != nil {
		return a.decodeError(err)
	}
	return nil
}

func (a *Adapter) identity(cred credential.PlatformCredential) (string, string, error) {
	if cred == nil || cred.Platform() != a.platform {
		got := credential.Platform("none")
		if cred != nil {
			got = cred.Platform()
		}
		return "", "", credential.BadCredentialMapPlatform(got, a.platform)
	}
	if err := cred.Validate(); err != nil {
		return "", "", err
	}
	service, user := credential.Identity(cred)
	return service, user, nil
}

func (a *Adapter) decodeError(err error) error {
	switch {
	case errors.Is(err, keyring.ErrNotFound):
		return credential.NewPlatformError(credential.KindNoEntry, err)
	case errors.Is(err, keyring.ErrSetDataTooBig):
		limit := defaultItemLimit
		if a.platform == credential.PlatformWindows {
			limit = windowsPasswordLimit
		}
		tooLong := credential.TooLong("password", limit)
		tooLong.Err = err
		return tooLong
	case errors.Is(err, keyring.ErrUnsupportedPlatform):
		return credential.NewPlatformError(credential.KindNoStorageAccess, err)
	default:
		return credential.NewPlatformError(credential.KindPlatformFailure, err)
	}
}
