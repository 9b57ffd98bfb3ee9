// Package keychain is a thin client for the macOS Security framework's
// generic password items.
//
// Items are addressed by service and account inside the default keychain of
// a preference domain:
//   - User: the login keychain of the current user
//   - System: /Library/Keychains/System.keychain
//   - Common: the keychain shared by all users
//   - Dynamic: the keychain chosen at runtime (e.g. a smart card)
//
// Handles returned by a Client are native references. Callers close them as
// soon as the operation that needed them is done.
package keychain

import (
	"errors"
	"fmt"
)

// Domain is a SecPreferencesDomain value.
type Domain int

const (
	DomainUser    Domain = 0
	DomainSystem  Domain = 1
	DomainCommon  Domain = 2
	DomainDynamic Domain = 3
)

func (d Domain) String() string {
	switch d {
	case DomainUser:
		return "user"
	case DomainSystem:
		return "system"
	case DomainCommon:
		return "common"
	case DomainDynamic:
		return "dynamic"
	}
	return fmt.Sprintf("domain(%d)", int(d))
}

// Client opens the default keychain of a preference domain.
type Client interface {
	DefaultKeychain(domain Domain) (Keychain, error)
}

// Keychain is an open reference to one keychain file.
type Keychain interface {
	// SetGenericPassword stores data under service/account, replacing the
	// data of an existing item with the same identity.
	SetGenericPassword(service, account string, data []byte) error
	// FindGenericPassword returns the data of the item and a reference to it.
	FindGenericPassword(service, account string) ([]byte, Item, error)
	Close()
}

// Item is a reference to a single keychain item.
type Item interface {
	Delete() error
	Close()
}

// Status is an OSStatus result code from the Security framework.
type Status int32

// Result codes from SecBase.h.
const (
	StatusSuccess               Status = 0
	StatusParam                 Status = -50
	StatusUserCanceled          Status = -128
	StatusNotAvailable          Status = -25291
	StatusReadOnly              Status = -25292
	StatusAuthFailed            Status = -25293
	StatusNoSuchKeychain        Status = -25294
	StatusInvalidKeychain       Status = -25295
	StatusDuplicateItem         Status = -25299
	StatusItemNotFound          Status = -25300
	StatusNoDefaultKeychain     Status = -25307
	StatusInteractionNotAllowed Status = -25308
	StatusDecode                Status = -26275
)

// StatusError is a failed Security framework call.
type StatusError struct {
	Status  Status
	Op      string
	Message string
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = fmt.Sprintf("%s (%d)", statusText(e.Status), e.Status)
	}
	if e.Op == "" {
		return msg
	}
	return e.Op + ": " + msg
}

// statusText mirrors `security error <code>` for the codes this package names.
func statusText(s Status) string {
	switch s {
	case StatusParam:
		return "One or more parameters passed to the function were not valid."
	case StatusUserCanceled:
		return "User canceled the operation."
	case StatusNotAvailable:
		return "No keychain is available. You may need to restart your computer."
	case StatusReadOnly:
		return "Read-only error."
	case StatusAuthFailed:
		return "The user name or passphrase you entered is not correct."
	case StatusNoSuchKeychain:
		return "The specified keychain could not be found."
	case StatusInvalidKeychain:
		return "The keychain is not valid."
	case StatusDuplicateItem:
		return "The specified item already exists in the keychain."
	case StatusItemNotFound:
		return "The specified item could not be found in the keychain."
	case StatusNoDefaultKeychain:
		return "A default keychain could not be found."
	case StatusInteractionNotAllowed:
		return "User interaction is not allowed."
	case StatusDecode:
		return "Unable to decode the provided data."
	}
	return "Keychain Error."
}

// newStatusError returns nil for StatusSuccess.
func newStatusError(op string, s Status) error {
	if s == StatusSuccess {
		return nil
	}
	return &StatusError{Status: s, Op: op}
}

// Code returns the OSStatus of a native error, and false when err did not
// come from a keychain call.
func Code(err error) (Status, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status, true
	}
	return 0, false
}
