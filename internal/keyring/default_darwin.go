//go:build darwin && !ios

package keyring

import "github.com/benaskins/latch/internal/platform/macos"

func defaultAdapter() Adapter {
	return macos.NewSystem()
}
