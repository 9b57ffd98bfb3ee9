// Package credential defines the platform-independent credential model
// shared by every platform adapter.
//
// A PlatformCredential is a closed set of descriptors, one per supported
// platform. Adapters accept only the variant for their own platform and
// reject the others with ErrBadCredentialMapPlatform.
package credential

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform identifies which native credential store a descriptor targets.
type Platform string

const (
	PlatformMacOS   Platform = "macos"
	PlatformWindows Platform = "windows"
	PlatformLinux   Platform = "linux"
	PlatformIOS     Platform = "ios"
)

// Current returns the platform of the running binary. Unix systems other
// than darwin use the Secret Service model and report PlatformLinux.
func Current() Platform {
	switch runtime.GOOS {
	case "darwin":
		return PlatformMacOS
	case "ios":
		return PlatformIOS
	case "windows":
		return PlatformWindows
	default:
		return PlatformLinux
	}
}

// MacKeychainDomain is the preference domain whose default keychain holds an item.
type MacKeychainDomain int

const (
	DomainUser MacKeychainDomain = iota
	DomainSystem
	DomainCommon
	DomainDynamic
)

var domainNames = [...]string{
	DomainUser:    "user",
	DomainSystem:  "system",
	DomainCommon:  "common",
	DomainDynamic: "dynamic",
}

// Domains lists every keychain domain in declaration order.
func Domains() []MacKeychainDomain {
	return []MacKeychainDomain{DomainUser, DomainSystem, DomainCommon, DomainDynamic}
}

func (d MacKeychainDomain) String() string {
	if d < 0 || int(d) >= len(domainNames) {
		return fmt.Sprintf("domain(%d)", int(d))
	}
	return domainNames[d]
}

// ParseMacKeychainDomain parses the text form of a domain ("user", "system",
// "common" or "dynamic", case-insensitive).
func ParseMacKeychainDomain(s string) (MacKeychainDomain, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d, n := range domainNames {
		if n == name {
			return MacKeychainDomain(d), nil
		}
	}
	return 0, fmt.Errorf("unknown keychain domain %q (want user, system, common or dynamic)", s)
}

func (d MacKeychainDomain) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *MacKeychainDomain) UnmarshalText(text []byte) error {
	parsed, err := ParseMacKeychainDomain(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PlatformCredential is implemented only by the descriptor types in this
// package.
type PlatformCredential interface {
	Platform() Platform
	Validate() error
	isPlatformCredential()
}

// MacCredential identifies a generic password item by service and account
// inside the default keychain of Domain.
type MacCredential struct {
	Domain  MacKeychainDomain
	Service string
	Account string
}

func (*MacCredential) Platform() Platform    { return PlatformMacOS }
func (*MacCredential) isPlatformCredential() {}

func (c *MacCredential) Validate() error {
	if c.Domain < DomainUser || c.Domain > DomainDynamic {
		return invalid("domain", fmt.Sprintf("unknown value %d", int(c.Domain)))
	}
	if c.Service == "" {
		return invalid("service", "must not be empty")
	}
	if c.Account == "" {
		return invalid("account", "must not be empty")
	}
	return nil
}

func (c *MacCredential) String() string {
	return fmt.Sprintf("%s/%s (%s keychain)", c.Service, c.Account, c.Domain)
}

// WinCredential identifies a generic credential in the Windows Credential Manager.
type WinCredential struct {
	Username    string
	TargetName  string
	TargetAlias string
	Comment     string
}

func (*WinCredential) Platform() Platform    { return PlatformWindows }
func (*WinCredential) isPlatformCredential() {}

func (c *WinCredential) Validate() error {
	if c.TargetName == "" {
		return invalid("target_name", "must not be empty")
	}
	return nil
}

// LinuxCredential identifies an item in a Secret Service collection by its
// lookup attributes.
type LinuxCredential struct {
	Collection string
	Label      string
	Attributes map[string]string
}

func (*LinuxCredential) Platform() Platform    { return PlatformLinux }
func (*LinuxCredential) isPlatformCredential() {}

func (c *LinuxCredential) Validate() error {
	if c.Attributes["service"] == "" {
		return invalid("service", "attribute must not be empty")
	}
	if c.Attributes["username"] == "" {
		return invalid("username", "attribute must not be empty")
	}
	return nil
}

// IosCredential identifies a generic password in the iOS keychain.
type IosCredential struct {
	Service string
	Account string
}

func (*IosCredential) Platform() Platform    { return PlatformIOS }
func (*IosCredential) isPlatformCredential() {}

func (c *IosCredential) Validate() error {
	if c.Service == "" {
		return invalid("service", "must not be empty")
	}
	if c.Account == "" {
		return invalid("account", "must not be empty")
	}
	return nil
}

// Default builds the descriptor a platform uses for a plain service/user pair.
func Default(p Platform, service, user string) PlatformCredential {
	switch p {
	case PlatformMacOS:
		return &MacCredential{Domain: DomainUser, Service: service, Account: user}
	case PlatformWindows:
		return &WinCredential{
			Username:   user,
			TargetName: user + "." + service,
			Comment:    "latch credential for service " + service,
		}
	case PlatformIOS:
		return &IosCredential{Service: service, Account: user}
	default:
		return &LinuxCredential{
			Collection: "default",
			Label:      fmt.Sprintf("latch: service '%s', user '%s'", service, user),
			Attributes: map[string]string{
				"service":  service,
				"username": user,
			},
		}
	}
}

// Identity returns the service/user pair a descriptor resolves to in stores
// that only understand that pair.
func Identity(c PlatformCredential) (service, user string) {
	switch c := c.(type) {
	case *MacCredential:
		return c.Service, c.Account
	case *IosCredential:
		return c.Service, c.Account
	case *WinCredential:
		return c.TargetName, c.Username
	case *LinuxCredential:
		return c.Attributes["service"], c.Attributes["username"]
	}
	return "", ""
}
