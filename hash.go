package hashring

import (
	"crypto/md5"
	"encoding/binary"
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// replicaSize is the width of the replica index suffix mixed into every
// virtual node digest.
const replicaSize = 4

// encodeReplica encodes the 1-based replica index which is appended to a
// node's bytes when hashing its virtual nodes.
func encodeReplica(x int) []byte {
	p := make([]byte, replicaSize)
	binary.LittleEndian.PutUint32(p, uint32(x))
	return p
}

// XXHash returns a 64-bit xxHash digest.
// It is the hash used when Config.Hash is nil.
func XXHash() hash.Hash64 {
	return xxhash.New()
}

// Murmur3 returns a 64-bit murmur3 digest.
func Murmur3() hash.Hash64 {
	return murmur3.New64()
}

// MD5 returns an MD5 digest exposed through the 64-bit hash interface by
// taking the first eight bytes of the sum. Its digest size remains 16, so a
// ring using it clamps its hash width to Config.MaxHashBytes rather than to
// the digest.
func MD5() hash.Hash64 {
	return hash64{md5.New()}
}

type hash64 struct {
	hash.Hash
}

func (h hash64) Sum64() uint64 {
	if h.Size() < 8 {
		panic("hashring: hash is too small")
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}
