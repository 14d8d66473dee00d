package hashring

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Node is the constraint for physical node identifiers placed on a ring.
//
// A node must be comparable, so that duplicates in the input list can be
// dropped, and must know how to serialize itself for hashing. Where the ring
// needs a total order between nodes it uses the lexicographic order of their
// serialized forms.
type Node interface {
	comparable
	io.WriterTo
}

// StringNode is a Node backed by a plain string.
type StringNode string

func (s StringNode) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, string(s))
	return int64(n), err
}

// IntNode is a Node backed by an int, serialized as a little-endian uint64.
type IntNode int

func (x IntNode) WriteTo(w io.Writer) (int64, error) {
	var p [8]byte
	binary.LittleEndian.PutUint64(p[:], uint64(x))
	n, err := w.Write(p[:])
	return int64(n), err
}

// vnode is a single placement of a physical node on the ring.
type vnode[N Node] struct {
	hash uint64
	node N
}

// marshalNode captures a node's serialized form, which defines both its hash
// input and its order relative to other nodes.
func marshalNode(n io.WriterTo) []byte {
	var buf bytes.Buffer
	if _, err := n.WriteTo(&buf); err != nil {
		panic(fmt.Sprintf("hashring: node serialization error: %v", err))
	}
	return buf.Bytes()
}
