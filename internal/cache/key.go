// Package cache implements the per-vtree-node component cache of spec.md
// §4.1-§4.2: a key identifying the live state of a vtree node's context
// clauses/variables, and a chained hash table of cached values keyed on
// (vtree node, key). Grounded line-for-line on miniC2D's cnf_key.c and
// cache.c, with the original's raw C pointers replaced by arena indices
// into a single entries slice (see DESIGN.md).
package cache

import (
	"github.com/go-dnnf/compiler/internal/satstate"
	"github.com/go-dnnf/compiler/internal/vtree"
)

// Key is the bit-packed state of a vtree node's context: one bit per
// context clause (subsumed or not), then two bits per context-in variable
// (free/true/false), packed MSB-first into bytes exactly as
// construct_vtree_key lays them out. Hash is seeded with the node's
// inorder position so that nodes at different tree positions never
// collide purely by accident of their context contents.
type Key struct {
	Bytes []byte
	Hash  uint64
}

// BuildKey computes the key for node's current context under sat.
func BuildKey(node *vtree.Node, sat satstate.State) Key {
	var bits []bool
	for _, clauseIdx := range node.ContextClauses {
		bits = append(bits, sat.IsSubsumed(clauseIdx))
	}
	for _, v := range node.ContextInVars {
		bits = append(bits, sat.IsImplied(v))  // true bit
		bits = append(bits, sat.IsImplied(-v)) // false bit
	}

	b := packMSB(bits)

	hash := uint64(node.Position)
	for _, byteVal := range b {
		hash = 31*hash + uint64(byteVal)
	}

	return Key{Bytes: b, Hash: hash}
}

// packMSB packs bits into bytes in the order SET_NEXT_BIT fills them: each
// new bit is shifted into the low end of the current cell, so after 8 bits
// the first bit set ends up as the byte's most significant bit.
func packMSB(bits []bool) []byte {
	if len(bits) == 0 {
		return nil
	}
	size := (len(bits) + 7) / 8
	out := make([]byte, size)
	for i, bit := range bits {
		cell := i / 8
		out[cell] <<= 1
		if bit {
			out[cell] |= 1
		}
	}
	return out
}
