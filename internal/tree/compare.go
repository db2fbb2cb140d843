package tree

import (
	"encoding/binary"
	"hash/maphash"
)

// seed is shared by every node so hashes are comparable within a process.
var seed = maphash.MakeSeed()

func (n *Node) computeHash() uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	h.WriteString(n.tag)
	h.WriteByte(0)
	for _, a := range n.attrs {
		h.WriteString(a.Name)
		h.WriteByte(0)
		h.WriteString(a.Value)
		h.WriteByte(0)
	}
	if n.hasText {
		h.WriteByte(1)
		h.WriteString(n.text)
	} else {
		h.WriteByte(2)
	}
	var b [8]byte
	for _, c := range n.children {
		binary.LittleEndian.PutUint64(b[:], c.hash)
		h.Write(b[:])
	}
	return h.Sum64()
}

// Hash returns a 64-bit content hash of the subtree. Equal subtrees have equal
// hashes. Hashes are only comparable within one process.
// It panics if n is nil.
func (n *Node) Hash() uint64 {
	if n == nil {
		panic("tree: Hash called on nil node")
	}
	return n.hash
}

// Equal reports whether a and b have the same tag, the same attributes in the
// same order, the same text and equal children in the same order.
// Two nil nodes are equal.
func Equal(a, b *Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.hash != b.hash {
		return false
	}
	return deepEqual(a, b)
}

func deepEqual(a, b *Node) bool {
	if a == b {
		return true
	}
	if a.tag != b.tag || a.hasText != b.hasText || a.text != b.text {
		return false
	}
	if len(a.attrs) != len(b.attrs) || len(a.children) != len(b.children) {
		return false
	}
	for i := range a.attrs {
		if a.attrs[i] != b.attrs[i] {
			return false
		}
	}
	for i := range a.children {
		if !deepEqual(a.children[i], b.children[i]) {
			return false
		}
	}
	return true
}
