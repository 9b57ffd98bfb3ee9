package macos

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benaskins/latch/internal/credential"
	"github.com/benaskins/latch/internal/keychain"
)

func newTestAdapter() (*Adapter, *keychain.MemoryClient) {
	client := keychain.NewMemoryClient()
	return New(client), client
}

func macCred(domain credential.MacKeychainDomain, service, account string) *credential.MacCredential {
	return &credential.MacCredential{Domain: domain, Service: service, Account: account}
}

func requireKind(t *testing.T, err error, want credential.Kind) *credential.Error {
	t.Helper()
	require.Error(t, err)
	var cerr *credential.Error
	require.True(t, errors.As(err, &cerr), "expected *credential.Error, got %T: %v", err, err)
	require.Equal(t, want, cerr.Kind, "error: %v", err)
	return cerr
}

func TestRoundTripEveryDomain(t *testing.T) {
	for _, domain := range credential.Domains() {
		t.Run(domain.String(), func(t *testing.T) {
			a, client := newTestAdapter()
			cred := macCred(domain, "com.example.api", "alice")

			require.NoError(t, a.SetPassword(cred, "s3cr3t-🔑"))
			got, err := a.GetPassword(cred)
			require.NoError(t, err)
			assert.Equal(t, "s3cr3t-🔑", got)
			assert.Zero(t, client.OpenHandles(), "handles must be released per operation")
		})
	}
}

func TestSetTwiceUpserts(t *testing.T) {
	a, _ := newTestAdapter()
	cred := macCred(credential.DomainUser, "svc", "bob")

	require.NoError(t, a.SetPassword(cred, "first"))
	require.NoError(t, a.SetPassword(cred, "second"))

	got, err := a.GetPassword(cred)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestEmptyPasswordRoundTrips(t *testing.T) {
	a, _ := newTestAdapter()
	cred := macCred(credential.DomainUser, "svc", "empty")

	require.NoError(t, a.SetPassword(cred, ""))
	got, err := a.GetPassword(cred)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestGetMissingIsNoEntry(t *testing.T) {
	a, _ := newTestAdapter()
	_, err := a.GetPassword(macCred(credential.DomainUser, "svc", "nobody"))
	requireKind(t, err, credential.KindNoEntry)
	assert.ErrorIs(t, err, credential.ErrNoEntry)
}

func TestDeleteMissingIsNoEntry(t *testing.T) {
	a, _ := newTestAdapter()
	err := a.DeletePassword(macCred(credential.DomainUser, "svc", "nobody"))
	requireKind(t, err, credential.KindNoEntry)
}

func TestDeleteThenGetIsNoEntry(t *testing.T) {
	a, client := newTestAdapter()
	cred := macCred(credential.DomainUser, "svc", "carol")

	require.NoError(t, a.SetPassword(cred, "value"))
	require.NoError(t, a.DeletePassword(cred))

	_, err := a.GetPassword(cred)
	requireKind(t, err, credential.KindNoEntry)
	requireKind(t, a.DeletePassword(cred), credential.KindNoEntry)
	assert.Zero(t, client.OpenHandles())
}

func TestDomainsAreIsolated(t *testing.T) {
	a, _ := newTestAdapter()
	require.NoError(t, a.SetPassword(macCred(credential.DomainUser, "svc", "dave"), "user-value"))

	_, err := a.GetPassword(macCred(credential.DomainSystem, "svc", "dave"))
	requireKind(t, err, credential.KindNoEntry)
}

func TestWrongPlatformMakesNoNativeCall(t *testing.T) {
	others := []credential.PlatformCredential{
		credential.Default(credential.PlatformWindows, "svc", "erin"),
		credential.Default(credential.PlatformLinux, "svc", "erin"),
		credential.Default(credential.PlatformIOS, "svc", "erin"),
		nil,
	}
	for _, cred := range others {
		a, client := newTestAdapter()

		requireKind(t, a.SetPassword(cred, "x"), credential.KindBadCredentialMapPlatform)
		_, err := a.GetPassword(cred)
		requireKind(t, err, credential.KindBadCredentialMapPlatform)
		requireKind(t, a.DeletePassword(cred), credential.KindBadCredentialMapPlatform)

		assert.Zero(t, client.Calls(), "no native call for %T", cred)
	}
}

func TestInvalidDescriptorMakesNoNativeCall(t *testing.T) {
	a, client := newTestAdapter()
	err := a.SetPassword(macCred(credential.DomainUser, "", "frank"), "x")
	cerr := requireKind(t, err, credential.KindInvalid)
	assert.Equal(t, "service", cerr.Attr)
	assert.Zero(t, client.Calls())
}

func TestNonUTF8IsBadEncodingWithRawBytes(t *testing.T) {
	a, client := newTestAdapter()
	raw := []byte{0x70, 0x61, 0xff, 0xfe, 0x73}
	client.Put(keychain.DomainUser, "svc", "grace", raw)

	_, err := a.GetPassword(macCred(credential.DomainUser, "svc", "grace"))
	cerr := requireKind(t, err, credential.KindBadEncoding)
	assert.Equal(t, "password", cerr.Attr)
	assert.Equal(t, raw, cerr.Raw)
	assert.ErrorIs(t, err, credential.ErrBadEncoding)
	assert.Zero(t, client.OpenHandles())
}

func TestUnavailableStoreIsNoStorageAccess(t *testing.T) {
	for _, status := range []keychain.Status{
		keychain.StatusNotAvailable,
		keychain.StatusReadOnly,
		keychain.StatusNoSuchKeychain,
		keychain.StatusInvalidKeychain,
	} {
		a, client := newTestAdapter()
		client.FailDomain(keychain.DomainSystem, status)

		err := a.SetPassword(macCred(credential.DomainSystem, "svc", "heidi"), "x")
		cerr := requireKind(t, err, credential.KindNoStorageAccess)

		code, ok := keychain.Code(cerr)
		require.True(t, ok, "native diagnostic must be kept")
		assert.Equal(t, status, code)
	}
}

func TestNativeFailureDuringOperation(t *testing.T) {
	a, client := newTestAdapter()
	cred := macCred(credential.DomainUser, "svc", "ivan")
	require.NoError(t, a.SetPassword(cred, "value"))

	client.Fail(keychain.OpModify, keychain.StatusAuthFailed)
	requireKind(t, a.SetPassword(cred, "other"), credential.KindPlatformFailure)

	client.Fail(keychain.OpDelete, keychain.StatusInteractionNotAllowed)
	requireKind(t, a.DeletePassword(cred), credential.KindPlatformFailure)

	got, err := a.GetPassword(cred)
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.Zero(t, client.OpenHandles())
}

func TestDecodeErrorTable(t *testing.T) {
	cases := []struct {
		status keychain.Status
		want   credential.Kind
	}{
		{keychain.StatusNotAvailable, credential.KindNoStorageAccess},
		{keychain.StatusReadOnly, credential.KindNoStorageAccess},
		{keychain.StatusNoSuchKeychain, credential.KindNoStorageAccess},
		{keychain.StatusInvalidKeychain, credential.KindNoStorageAccess},
		{keychain.StatusItemNotFound, credential.KindNoEntry},
		{keychain.StatusAuthFailed, credential.KindPlatformFailure},
		{keychain.StatusDuplicateItem, credential.KindPlatformFailure},
		{keychain.StatusInteractionNotAllowed, credential.KindPlatformFailure},
		{keychain.StatusParam, credential.KindPlatformFailure},
		{keychain.StatusUserCanceled, credential.KindPlatformFailure},
	}
	for _, tc := range cases {
		native := &keychain.StatusError{Status: tc.status, Op: "op"}
		cerr := requireKind(t, decodeError(native), tc.want)
		assert.Same(t, native, cerr.Err, "status %d must be passed through", tc.status)
	}
}

func TestDecodeErrorFallbackIsTotal(t *testing.T) {
	mapped := map[keychain.Status]bool{
		keychain.StatusNotAvailable:    true,
		keychain.StatusReadOnly:        true,
		keychain.StatusNoSuchKeychain:  true,
		keychain.StatusInvalidKeychain: true,
		keychain.StatusItemNotFound:    true,
	}
	for code := keychain.Status(-35000); code <= 0; code++ {
		if mapped[code] {
			continue
		}
		err := decodeError(&keychain.StatusError{Status: code})
		var cerr *credential.Error
		require.True(t, errors.As(err, &cerr))
		if cerr.Kind != credential.KindPlatformFailure {
			t.Fatalf("status %d mapped to %s, want platform_failure", code, cerr.Kind)
		}
	}

	requireKind(t, decodeError(errors.New("not a status")), credential.KindPlatformFailure)
}

func TestNativeDomainMapping(t *testing.T) {
	assert.Equal(t, keychain.DomainUser, nativeDomain(credential.DomainUser))
	assert.Equal(t, keychain.DomainSystem, nativeDomain(credential.DomainSystem))
	assert.Equal(t, keychain.DomainCommon, nativeDomain(credential.DomainCommon))
	assert.Equal(t, keychain.DomainDynamic, nativeDomain(credential.DomainDynamic))
}
