package repository

import (
	"math"
	"math/rand/v2"

	"github.com/okian/pbpwpa/internal/domain/types"
)

// swingIndex is a treap of plays ordered by |WPA| DESC, then game id ASC,
// then play index ASC, so in-order traversal yields the swing ranking.
// It is not safe for concurrent use; MemoryStore guards it.
type swingIndex struct {
	root *node
	size int
}

type node struct {
	swing types.Swing
	abs   float64
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less reports whether a ranks before b.
func less(aAbs float64, a *types.Swing, bAbs float64, b *types.Swing) bool {
	if aAbs != bAbs {
		return aAbs > bAbs
	}
	if a.GameID != b.GameID {
		return a.GameID < b.GameID
	}
	return a.Index < b.Index
}

func same(a, b *types.Swing) bool {
	return a.GameID == b.GameID && a.Index == b.Index
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

func insert(n, in *node) *node {
	if n == nil {
		return in
	}
	if less(in.abs, &in.swing, n.abs, &n.swing) {
		n.left = insert(n.left, in)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, in)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, abs float64, s *types.Swing) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.abs == abs && same(&n.swing, s):
		// Rotate the higher-priority child up until the node is a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, abs, s)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, abs, s)
		}
	case less(abs, s, n.abs, &n.swing):
		n.left = deleteNode(n.left, abs, s)
	default:
		n.right = deleteNode(n.right, abs, s)
	}
	fix(n)
	return n
}

// add indexes one play. NaN swings are not ranked.
func (x *swingIndex) add(s types.Swing) { //nolint:gocritic // hugeParam: copied into the node
	if math.IsNaN(s.WPA) {
		return
	}
	s.Rank = 0
	x.root = insert(x.root, &node{swing: s, abs: math.Abs(s.WPA), prio: rand.Uint64(), size: 1})
	x.size = nsize(x.root)
}

// remove drops one play previously added with the same game, index and WPA.
func (x *swingIndex) remove(s *types.Swing) {
	if math.IsNaN(s.WPA) {
		return
	}
	x.root = deleteNode(x.root, math.Abs(s.WPA), s)
	x.size = nsize(x.root)
}

// top returns up to limit swings in rank order with Rank set.
func (x *swingIndex) top(limit int) []types.Swing {
	if limit > x.size {
		limit = x.size
	}
	out := make([]types.Swing, 0, limit)
	collectTop(x.root, limit, &out)
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// collectTop appends up to limit swings in rank order.
func collectTop(n *node, limit int, out *[]types.Swing) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectTop(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, n.swing)
	}
	if len(*out) < limit {
		collectTop(n.right, limit, out)
	}
}
