package credential

import (
	"errors"
	"fmt"
)

// Kind classifies a credential error independently of the platform that
// produced it.
type Kind int

const (
	// KindPlatformFailure is any native failure the adapter does not interpret.
	KindPlatformFailure Kind = iota
	KindNoStorageAccess
	KindNoEntry
	KindBadEncoding
	KindBadCredentialMapPlatform
	KindTooLong
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindPlatformFailure:
		return "platform_failure"
	case KindNoStorageAccess:
		return "no_storage_access"
	case KindNoEntry:
		return "no_entry"
	case KindBadEncoding:
		return "bad_encoding"
	case KindBadCredentialMapPlatform:
		return "bad_credential_map_platform"
	case KindTooLong:
		return "too_long"
	case KindInvalid:
		return "invalid"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its Kind.
var (
	ErrPlatformFailure          = errors.New("platform secure storage failure")
	ErrNoStorageAccess          = errors.New("couldn't access platform secure storage")
	ErrNoEntry                  = errors.New("no matching entry found in secure storage")
	ErrBadEncoding              = errors.New("data is not valid UTF-8")
	ErrBadCredentialMapPlatform = errors.New("credential descriptor is for a different platform")
	ErrTooLong                  = errors.New("attribute is too long for platform")
	ErrInvalid                  = errors.New("attribute is invalid")
)

var sentinels = map[Kind]error{
	KindPlatformFailure:          ErrPlatformFailure,
	KindNoStorageAccess:          ErrNoStorageAccess,
	KindNoEntry:                  ErrNoEntry,
	KindBadEncoding:              ErrBadEncoding,
	KindBadCredentialMapPlatform: ErrBadCredentialMapPlatform,
	KindTooLong:                  ErrTooLong,
	KindInvalid:                  ErrInvalid,
}

// Error is returned by every adapter operation.
type Error struct {
	Kind Kind
	// Attr names the offending attribute for BadEncoding, TooLong and Invalid.
	Attr string
	// Raw holds the undecodable bytes for BadEncoding, unchanged.
	Raw []byte
	// Limit is the maximum allowed length for TooLong.
	Limit int
	// Reason describes why an attribute is Invalid.
	Reason string
	// Err is the underlying native error, if any.
	Err error
}

func (e *Error) Error() string {
	base := sentinels[e.Kind].Error()
	switch e.Kind {
	case KindBadEncoding:
		base = fmt.Sprintf("%s: %s is not valid UTF-8 (%d bytes)", ErrBadEncoding, e.Attr, len(e.Raw))
	case KindTooLong:
		base = fmt.Sprintf("%s: %s exceeds %d bytes", ErrTooLong, e.Attr, e.Limit)
	case KindInvalid:
		base = fmt.Sprintf("%s: %s %s", ErrInvalid, e.Attr, e.Reason)
	}
	if e.Err != nil {
		return base + ": " + e.Err.Error()
	}
	return base
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// NewPlatformError wraps a native error as the given kind.
func NewPlatformError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// BadCredentialMapPlatform reports a descriptor presented to the wrong
// platform's adapter.
func BadCredentialMapPlatform(got, want Platform) *Error {
	return &Error{
		Kind: KindBadCredentialMapPlatform,
		Err:  fmt.Errorf("got %s descriptor, adapter serves %s", got, want),
	}
}

// BadEncoding reports bytes under attr that are not valid UTF-8. raw is kept
// as given so the caller can recover it.
func BadEncoding(attr string, raw []byte) *Error {
	return &Error{Kind: KindBadEncoding, Attr: attr, Raw: raw}
}

// TooLong reports an attribute longer than the platform allows.
func TooLong(attr string, limit int) *Error {
	return &Error{Kind: KindTooLong, Attr: attr, Limit: limit}
}

func invalid(attr, reason string) *Error {
	return &Error{Kind: KindInvalid, Attr: attr, Reason: reason}
}

// KindOf returns the kind of a credential error, and false for errors that
// did not come from an adapter.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
