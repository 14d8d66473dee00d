//go:build hashring_debug

package hashring

import "fmt"

const debug = true

// assertSearch cross-checks an interpolation search result against a linear
// scan for the smallest index whose hash value reaches the target.
func assertSearch(hashes []uint64, target uint64, got int) {
	want := 0
	for hashes[want] < target {
		want++
	}
	if got != want {
		panic(fmt.Sprintf(
			"hashring: internal error: search(%d) = %d, reference scan = %d",
			target, got, want,
		))
	}
}
