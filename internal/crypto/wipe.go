package crypto

import "runtime"

// Wipe zeroes b. Best-effort only: the runtime may already hold copies.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}
