package hashring

import (
	"math/rand"
	"sort"
	"testing"
)

// searchLinear is the reference: the smallest index whose hash value reaches
// the target. The sentinel stops the scan.
func searchLinear(hashes []uint64, target uint64) int {
	i := 0
	for hashes[i] < target {
		i++
	}
	return i
}

// searchRing builds a query-only ring around a raw hash table, the same way
// New() lays it out: sorted values plus the mask+1 sentinel.
func searchRing(hashes []uint64, mask uint64) *Ring[StringNode] {
	table := make([]uint64, len(hashes)+1)
	copy(table, hashes)
	table[len(hashes)] = mask + 1

	partition := (mask + 1) / uint64(len(table))
	if partition == 0 {
		partition = 1
	}
	return &Ring[StringNode]{
		hashes:    table,
		mask:      mask,
		partition: partition,
	}
}

func TestSearch(t *testing.T) {
	const mask = 0xff
	for _, test := range []struct {
		name   string
		hashes []uint64
	}{
		{
			name: "empty",
		},
		{
			name:   "single",
			hashes: []uint64{0x7f},
		},
		{
			name:   "uniform",
			hashes: []uint64{0x10, 0x30, 0x50, 0x70, 0x90, 0xb0, 0xd0, 0xf0},
		},
		{
			name:   "all equal",
			hashes: []uint64{0x42, 0x42, 0x42, 0x42, 0x42, 0x42},
		},
		{
			name:   "duplicate runs",
			hashes: []uint64{0x05, 0x05, 0x40, 0x40, 0x40, 0xe0, 0xe0},
		},
		{
			name:   "skewed low",
			hashes: []uint64{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0xfe},
		},
		{
			name:   "skewed high",
			hashes: []uint64{0x01, 0xf8, 0xf9, 0xfa, 0xfb, 0xfc, 0xfd, 0xfe},
		},
		{
			name:   "bounds",
			hashes: []uint64{0x00, 0x00, 0xff, 0xff},
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			r := searchRing(test.hashes, mask)
			for target := uint64(0); target <= mask; target++ {
				act := r.search(target)
				exp := searchLinear(r.hashes, target)
				if act != exp {
					t.Fatalf(
						"search(%#x) over %#x = %d; want %d",
						target, r.hashes, act, exp,
					)
				}
			}
		})
	}
}

func TestSearchRandom(t *testing.T) {
	const mask = 0xffff
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		hashes := make([]uint64, rnd.Intn(512))
		for j := range hashes {
			hashes[j] = rnd.Uint64() & mask
		}
		sort.Slice(hashes, func(a, b int) bool {
			return hashes[a] < hashes[b]
		})
		r := searchRing(hashes, mask)
		for j := 0; j < 200; j++ {
			target := rnd.Uint64() & mask
			act := r.search(target)
			exp := searchLinear(r.hashes, target)
			if act != exp {
				t.Fatalf(
					"search(%#x) over table of %d = %d; want %d",
					target, len(hashes), act, exp,
				)
			}
		}
		// Table values themselves and their neighbors hit the tie and
		// off-by-one paths.
		for _, h := range hashes {
			for _, target := range []uint64{h, h + 1} {
				if target > mask {
					continue
				}
				act := r.search(target)
				exp := searchLinear(r.hashes, target)
				if act != exp {
					t.Fatalf(
						"search(%#x) over table of %d = %d; want %d",
						target, len(hashes), act, exp,
					)
				}
			}
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	nodes := make([]StringNode, 32)
	for i := range nodes {
		nodes[i] = StringNode("node" + string(rune('a'+i)))
	}
	r, err := New(nodes, Config{})
	if err != nil {
		b.Fatal(err)
	}
	rnd := rand.New(rand.NewSource(1))
	targets := make([]uint64, 1024)
	for i := range targets {
		targets[i] = rnd.Uint64() & r.mask
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.search(targets[i%len(targets)])
	}
}
