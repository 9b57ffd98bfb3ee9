//go:build !darwin || ios

package keychain

// SystemClient reports every keychain as unavailable. The Security
// framework exists only on macOS; use MemoryClient to exercise callers
// elsewhere.
type SystemClient struct{}

// NewSystemClient returns a Client whose keychains are never available.
func NewSystemClient() *SystemClient {
	return &SystemClient{}
}

func (c *SystemClient) DefaultKeychain(domain Domain) (Keychain, error) {
	return nil, newStatusError("SecKeychainCopyDomainDefault", StatusNotAvailable)
}
