//go:build darwin && !ios

package keychain

/*
#cgo CFLAGS: -Wno-deprecated-declarations
#cgo LDFLAGS: -framework CoreFoundation -framework Security

#include <stdint.h>
#include <stdlib.h>
#include <CoreFoundation/CoreFoundation.h>
#include <Security/Security.h>

// Keychain and item references cross into Go as uintptr_t so cgo does not
// have to reason about CoreFoundation pointer types.

static OSStatus latch_copy_domain_default(int domain, uintptr_t *out) {
	SecKeychainRef kc = NULL;
	OSStatus status = SecKeychainCopyDomainDefault((SecPreferencesDomain)domain, &kc);
	*out = (uintptr_t)kc;
	return status;
}

static void latch_release(uintptr_t ref) {
	if (ref != 0) {
		CFRelease((CFTypeRef)ref);
	}
}

static OSStatus latch_find_generic_password(uintptr_t kc,
		const char *service, UInt32 serviceLen,
		const char *account, UInt32 accountLen,
		void **data, UInt32 *dataLen, uintptr_t *item) {
	SecKeychainItemRef ref = NULL;
	OSStatus status = SecKeychainFindGenericPassword((CFTypeRef)kc,
		serviceLen, service, accountLen, account, dataLen, data, &ref);
	*item = (uintptr_t)ref;
	return status;
}

static void latch_free_content(void *data) {
	if (data != NULL) {
		SecKeychainItemFreeContent(NULL, data);
	}
}

static OSStatus latch_add_generic_password(uintptr_t kc,
		const char *service, UInt32 serviceLen,
		const char *account, UInt32 accountLen,
		const void *data, UInt32 dataLen) {
	return SecKeychainAddGenericPassword((SecKeychainRef)kc,
		serviceLen, service, accountLen, account, dataLen, data, NULL);
}

static OSStatus latch_modify_data(uintptr_t item, const void *data, UInt32 dataLen) {
	return SecKeychainItemModifyAttributesAndData((SecKeychainItemRef)item, NULL, dataLen, data);
}

static OSStatus latch_delete_item(uintptr_t item) {
	return SecKeychainItemDelete((SecKeychainItemRef)item);
}
*/
import "C"

import (
	"unsafe"

	gokeychain "github.com/keybase/go-keychain"
)

// SystemClient talks to the Security framework of the running machine.
type SystemClient struct{}

// NewSystemClient returns a Client backed by the native keychain services.
func NewSystemClient() *SystemClient {
	return &SystemClient{}
}

func (c *SystemClient) DefaultKeychain(domain Domain) (Keychain, error) {
	var ref C.uintptr_t
	status := C.latch_copy_domain_default(C.int(domain), &ref)
	if err := statusError("SecKeychainCopyDomainDefault", status); err != nil {
		return nil, err
	}
	return &systemKeychain{ref: ref}, nil
}

type systemKeychain struct {
	ref C.uintptr_t
}

func (k *systemKeychain) SetGenericPassword(service, account string, data []byte) error {
	if _, item, err := k.FindGenericPassword(service, account); err == nil {
		defer item.Close()
		return item.(*systemItem).modify(data)
	} else if code, _ := Code(err); code != StatusItemNotFound {
		return err
	}

	cService, cAccount, free := cStrings(service, account)
	defer free()
	cData, dataLen := cBytes(data)
	defer C.free(cData)

	status := C.latch_add_generic_password(k.ref,
		cService, C.UInt32(len(service)),
		cAccount, C.UInt32(len(account)),
		cData, dataLen)
	return statusError("SecKeychainAddGenericPassword", status)
}

func (k *systemKeychain) FindGenericPassword(service, account string) ([]byte, Item, error) {
	cService, cAccount, free := cStrings(service, account)
	defer free()

	var (
		data    unsafe.Pointer
		dataLen C.UInt32
		ref     C.uintptr_t
	)
	status := C.latch_find_generic_password(k.ref,
		cService, C.UInt32(len(service)),
		cAccount, C.UInt32(len(account)),
		&data, &dataLen, &ref)
	if err := statusError("SecKeychainFindGenericPassword", status); err != nil {
		return nil, nil, err
	}
	defer C.latch_free_content(data)

	password := C.GoBytes(data, C.int(dataLen))
	return password, &systemItem{ref: ref}, nil
}

func (k *systemKeychain) Close() {
	C.latch_release(k.ref)
	k.ref = 0
}

type systemItem struct {
	ref C.uintptr_t
}

func (i *systemItem) modify(data []byte) error {
	cData, dataLen := cBytes(data)
	defer C.free(cData)
	return statusError("SecKeychainItemModifyAttributesAndData", C.latch_modify_data(i.ref, cData, dataLen))
}

func (i *systemItem) Delete() error {
	return statusError("SecKeychainItemDelete", C.latch_delete_item(i.ref))
}

func (i *systemItem) Close() {
	C.latch_release(i.ref)
	i.ref = 0
}

// statusError renders the native message the same way `security error` does.
func statusError(op string, status C.OSStatus) error {
	if status == C.errSecSuccess {
		return nil
	}
	return &StatusError{
		Status:  Status(status),
		Op:      op,
		Message: gokeychain.Error(status).Error(),
	}
}

func cStrings(service, account string) (*C.char, *C.char, func()) {
	cService := C.CString(service)
	cAccount := C.CString(account)
	return cService, cAccount, func() {
		C.free(unsafe.Pointer(cService))
		C.free(unsafe.Pointer(cAccount))
	}
}

// cBytes copies data into C memory. The caller frees the result.
func cBytes(data []byte) (unsafe.Pointer, C.UInt32) {
	if len(data) == 0 {
		return C.malloc(1), 0
	}
	return C.CBytes(data), C.UInt32(len(data))
}
