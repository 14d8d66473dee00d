package hashring

import (
	"bytes"
	"fmt"
	"hash"
	"io"
	"sort"
	"sync"
)

// Defaults applied by New for zero Config fields.
const (
	DefaultVirtualNodes = 1024
	DefaultMaxHashBytes = 4
)

// maxHashBytes bounds the hash width so that the search sentinel
// (mask + 1) stays representable in a uint64.
const maxHashBytes = 7

// Config parametrizes ring construction.
// The zero value is a valid configuration with all defaults applied.
type Config struct {
	// VirtualNodes is the number of points placed on the ring per physical
	// node. The higher this number, the more equal distribution of items
	// this ring produces and the more time is needed to build the ring.
	//
	// If VirtualNodes is zero, then DefaultVirtualNodes is used. For most
	// applications the default value is fine enough.
	VirtualNodes int

	// MaxHashBytes is an upper bound on the hash width in bytes. The
	// effective width is the smaller of MaxHashBytes and the digest size of
	// the hash function; it is never widened past the digest. Must be
	// within [1, 7].
	//
	// If MaxHashBytes is zero, then DefaultMaxHashBytes is used.
	MaxHashBytes int

	// Hash is an optional function used to build up a new 64-bit hash
	// function for further hash values calculation.
	//
	// If Hash is nil, then XXHash is used.
	Hash func() hash.Hash64
}

// Ring is a consistent hashing ring built once from a fixed node list.
// After New() returns, a Ring holds no mutable lookup state and is safe for
// any number of concurrent readers without synchronization. Membership
// changes are handled by building a new Ring and swapping the reference.
// Ring instances must not be copied.
type Ring[N Node] struct {
	hash func() hash.Hash64

	// hashPool is a pool of reusable hash functions.
	hashPool sync.Pool

	// hashes holds the virtual node hash values in ascending order,
	// terminated by a sentinel equal to mask+1. The sentinel exceeds every
	// masked hash, so a search can never run past the table end.
	hashes []uint64

	// points holds the physical node owning each virtual node, positionally
	// aligned with hashes (minus the sentinel).
	points []N

	// nodes is the deduplicated node set, ordered by serialized form.
	nodes []N

	// mask truncates hash values to the effective width.
	mask uint64

	// partition is the expected average spacing between consecutive virtual
	// node hashes. It only steers the interpolation search step estimate,
	// never correctness.
	partition uint64
}

// New builds a ring placing VirtualNodes points on it for every distinct
// node. Duplicates in nodes are silently dropped. An empty list is legal and
// produces a ring whose queries visit no nodes.
//
// New returns an error only for invalid Config values. Construction is
// deterministic: the same node set and options produce bit-identical tables
// regardless of the input order.
func New[N Node](nodes []N, cfg Config) (*Ring[N], error) {
	vn := cfg.VirtualNodes
	if vn == 0 {
		vn = DefaultVirtualNodes
	}
	if vn < 0 {
		return nil, fmt.Errorf("hashring: virtual node count must be positive: %d", vn)
	}
	hb := cfg.MaxHashBytes
	if hb == 0 {
		hb = DefaultMaxHashBytes
	}
	if hb < 0 || hb > maxHashBytes {
		return nil, fmt.Errorf("hashring: max hash byte size must be within [1, %d]: %d", maxHashBytes, hb)
	}
	hfn := cfg.Hash
	if hfn == nil {
		hfn = XXHash
	}

	r := &Ring[N]{hash: hfn}
	h := hfn()
	if n := h.Size(); n < hb {
		// Clamping down to the digest size is fine; widening past it
		// would leave high mask bits permanently zero.
		hb = n
	}
	r.hashPool.Put(h)
	r.mask = 1<<(8*uint(hb)) - 1

	distinct := make([]N, 0, len(nodes))
	keys := make(map[N][]byte, len(nodes))
	for _, n := range nodes {
		if _, has := keys[n]; has {
			continue
		}
		keys[n] = marshalNode(n)
		distinct = append(distinct, n)
	}
	sort.Slice(distinct, func(i, j int) bool {
		return bytes.Compare(keys[distinct[i]], keys[distinct[j]]) < 0
	})

	points := make([]vnode[N], 0, len(distinct)*vn)
	for _, n := range distinct {
		for i := 1; i <= vn; i++ {
			points = append(points, vnode[N]{
				hash: r.digest(n, encodeReplica(i)...) & r.mask,
				node: n,
			})
		}
	}
	// Sort by the full (hash, node) pair so that hash collisions between
	// different nodes still order deterministically.
	sort.Slice(points, func(i, j int) bool {
		if points[i].hash != points[j].hash {
			return points[i].hash < points[j].hash
		}
		return bytes.Compare(keys[points[i].node], keys[points[j].node]) < 0
	})

	r.hashes = make([]uint64, len(points)+1)
	r.points = make([]N, len(points))
	for i, p := range points {
		r.hashes[i] = p.hash
		r.points[i] = p.node
	}
	r.hashes[len(points)] = r.mask + 1 // Sentinel.

	r.partition = (r.mask + 1) / uint64(len(r.hashes))
	if r.partition == 0 {
		r.partition = 1
	}
	r.nodes = distinct

	return r, nil
}

// GetNodes returns the deduplicated node set captured at construction,
// ordered by serialized form. The returned slice is the ring's own storage
// and must not be modified.
func (r *Ring[N]) GetNodes() []N {
	return r.nodes
}

// Walk visits the distinct physical nodes succeeding item on the ring, in
// ring order starting from item's position. Each node is offered at most
// once. Walking stops when fn returns false or when every node has been
// offered, whichever comes first.
func (r *Ring[N]) Walk(item io.WriterTo, fn func(N) bool) {
	remaining := len(r.nodes)
	if remaining == 0 {
		return
	}
	i := r.search(r.digest(item) & r.mask)
	if i == len(r.points) {
		// Landed on the sentinel slot: wrap to the ring start.
		i = 0
	}
	// NOTE: the already-emitted check is a linear scan, which is fine for
	// small and moderate node counts. A ring over a very large fleet would
	// want a constant-time visited set here instead.
	visited := make([]N, 0, remaining)
	for remaining > 0 {
		n := r.points[i]
		if !nodeIn(visited, n) {
			if !fn(n) {
				return
			}
			visited = append(visited, n)
			remaining--
		}
		if i++; i == len(r.points) {
			i = 0
		}
	}
}

// Get returns the successor node owning item.
// The returned flag is false only when the ring has no nodes.
func (r *Ring[N]) Get(item io.WriterTo) (node N, ok bool) {
	r.Walk(item, func(n N) bool {
		node, ok = n, true
		return false
	})
	return node, ok
}

// Successors returns the first k distinct nodes succeeding item in ring
// order. It returns fewer than k nodes when the ring holds fewer.
func (r *Ring[N]) Successors(item io.WriterTo, k int) []N {
	if k <= 0 {
		return nil
	}
	nodes := make([]N, 0, min(k, len(r.nodes)))
	r.Walk(item, func(n N) bool {
		nodes = append(nodes, n)
		return len(nodes) < k
	})
	return nodes
}

// Fold feeds item's successor sequence into fn, threading an accumulator
// through the calls. fn reports whether to continue along with the updated
// accumulator; Fold returns the final accumulator value.
//
// It is a package-level function since methods can not introduce additional
// type parameters.
func Fold[N Node, A any](r *Ring[N], item io.WriterTo, acc A, fn func(N, A) (bool, A)) A {
	r.Walk(item, func(n N) bool {
		var next bool
		next, acc = fn(n, acc)
		return next
	})
	return acc
}

func (r *Ring[N]) digest(src io.WriterTo, suffix ...byte) uint64 {
	h, _ := r.hashPool.Get().(hash.Hash64)
	if h == nil {
		h = r.hash()
	}
	defer func() {
		h.Reset()
		r.hashPool.Put(h)
	}()

	_, err := src.WriteTo(h)
	if err == nil {
		_, err = h.Write(suffix)
	}
	if err != nil {
		panic(fmt.Sprintf("hashring: digest error: %v", err))
	}
	return h.Sum64()
}

func nodeIn[N Node](nodes []N, n N) bool {
	for _, v := range nodes {
		if v == n {
			return true
		}
	}
	return false
}
