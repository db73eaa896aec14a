// SPDX-License-Identifier: GPL-3.0
package fqco

// flowTree is one FlowTable bucket: an intrusive, unbalanced binary
// search tree keyed by FlowKey, ordered the same way a kernel qdisc's
// per-bucket rb_root is, translated here from an intrusive red-black
// tree to a plain intrusive BST since no ordered-tree library fit this
// use (DESIGN.md). Buckets are sized (buckets_log, default 1024
// buckets) so collision chains stay short in practice.
type flowTree struct {
	root *FlowEntry
	n    int
}

// find returns the entry with the given key, or nil.
func (t *flowTree) find(key FlowKey) *FlowEntry {
	n := t.root
	for n != nil {
		switch {
		case key.Equal(n.key):
			return n
		case key.Less(n.key):
			n = n.treeLeft
		default:
			n = n.treeRight
		}
	}
	return nil
}

// insert adds a new entry. The caller must already have verified key is
// absent; the tree never holds duplicates.
func (t *flowTree) insert(f *FlowEntry) {
	f.treeLeft, f.treeRight = nil, nil
	t.n++
	if t.root == nil {
		t.root = f
		return
	}
	n := t.root
	for {
		if f.key.Less(n.key) {
			if n.treeLeft == nil {
				n.treeLeft = f
				return
			}
			n = n.treeLeft
		} else {
			if n.treeRight == nil {
				n.treeRight = f
				return
			}
			n = n.treeRight
		}
	}
}

// remove detaches the entry with the given key from the tree, if present.
func (t *flowTree) remove(key FlowKey) {
	if t.find(key) == nil {
		return
	}
	t.root = removeNode(t.root, key)
	t.n--
}

func removeNode(n *FlowEntry, key FlowKey) *FlowEntry {
	if n == nil {
		return nil
	}
	switch {
	case key.Less(n.key):
		n.treeLeft = removeNode(n.treeLeft, key)
		return n
	case n.key.Less(key):
		n.treeRight = removeNode(n.treeRight, key)
		return n
	default:
		// n is the node to remove.
		if n.treeLeft == nil {
			return n.treeRight
		}
		if n.treeRight == nil {
			return n.treeLeft
		}
		// Two children: splice in the in-order successor.
		succParent := n
		succ := n.treeRight
		for succ.treeLeft != nil {
			succParent = succ
			succ = succ.treeLeft
		}
		if succParent != n {
			succParent.treeLeft = succ.treeRight
			succ.treeRight = n.treeRight
		}
		succ.treeLeft = n.treeLeft
		return succ
	}
}

// walk calls fn for every entry in ascending key order, stopping early if
// fn returns false.
func (t *flowTree) walk(fn func(*FlowEntry) bool) {
	walkNode(t.root, fn)
}

func walkNode(n *FlowEntry, fn func(*FlowEntry) bool) bool {
	if n == nil {
		return true
	}
	if !walkNode(n.treeLeft, fn) {
		return false
	}
	if !fn(n) {
		return false
	}
	return walkNode(n.treeRight, fn)
}
