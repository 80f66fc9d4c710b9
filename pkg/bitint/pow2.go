/*
Package bitint provides the power-of-two helpers used for audio buffer
sizing. PortAudio hosts and most drivers deliver callbacks most reliably
when frames_per_buffer is a power of two, so configuration is validated
with IsPowerOfTwo and command line values are rounded with NextPowerOfTwo.

Usage:

	frames := bitint.NextPowerOfTwo(1000) // 1024
	ok := bitint.IsPowerOfTwo(frames)     // true

All functions run in constant time without allocating.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size, and 1 for
// size <= 0. Subtracting one first keeps exact powers of two unchanged:
// for 8, bits.Len(7) is 3 and 1<<3 is 8 again.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has a single bit set, so clearing its lowest set bit with n&(n-1) leaves 0.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
