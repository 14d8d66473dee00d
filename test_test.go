package hashring

import (
	"bytes"
	"encoding/binary"
	"hash"
	"testing"
)

// stubHash is a fake hash.Hash64 returning predefined values for predefined
// inputs. The input key is the full byte stream written between resets: for
// a virtual node that is the node's serialized form followed by the 4-byte
// little-endian replica index, for an item just its serialized form.
type stubHash struct {
	t      testing.TB
	values map[string]uint64
	buf    bytes.Buffer
}

func setupDigest(t testing.TB, values map[string]uint64) func() hash.Hash64 {
	return func() hash.Hash64 {
		return &stubHash{
			t:      t,
			values: values,
		}
	}
}

// vnodeKey builds the stub input key for replica i of node.
func vnodeKey(node string, i int) string {
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], uint32(i))
	return node + string(p[:])
}

func (h *stubHash) Write(p []byte) (int, error) {
	return h.buf.Write(p)
}

func (h *stubHash) Sum64() uint64 {
	v, has := h.values[h.buf.String()]
	if !has {
		h.t.Fatalf("stub hash: unexpected input: %q", h.buf.String())
	}
	return v
}

func (h *stubHash) Reset() {
	h.buf.Reset()
}

func (h *stubHash) Size() int      { return 8 }
func (h *stubHash) BlockSize() int { return 1 }

func (h *stubHash) Sum(p []byte) []byte {
	panic("stub hash: Sum() must not be called")
}
