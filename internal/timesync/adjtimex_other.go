//go:build !linux

package timesync

import "errors"

// KernelSynced is unsupported off Linux.
func KernelSynced() (bool, error) {
	return false, errors.New("timesync: kernel sync state not available on this platform")
}
