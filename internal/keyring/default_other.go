//go:build !darwin || ios

package keyring

import (
	"github.com/benaskins/latch/internal/credential"
	"github.com/benaskins/latch/internal/platform/generic"
)

func defaultAdapter() Adapter {
	return generic.New(credential.Current())
}
