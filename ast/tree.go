// Package ast defines the syntax tree built by the pattern parser. Nodes
// live in an arena and refer to each other by ID, so splicing a node in or
// out never leaves dangling pointers.
package ast

import (
	"fmt"
	"iter"

	"github.com/deepnoodle-ai/zigzag/internal/token"
	"github.com/deepnoodle-ai/zigzag/scope"
)

// ID is a handle to a node in a Tree. The zero ID refers to no node.
type ID int32

// None is the absent node.
const None ID = 0

type entry struct {
	parent, first, last, prev, next ID
	data                            Node
	pos                             token.Position
}

// Tree is an arena of nodes linked as ordered children of their parents.
type Tree struct {
	nodes    []entry
	builtins *scope.Builtins
}

// NewTree returns an empty tree. The builtins give comparison and literal
// nodes their types.
func NewTree(b *scope.Builtins) *Tree {
	return &Tree{nodes: make([]entry, 1, 64), builtins: b}
}

// Builtins returns the primitive types of the compilation.
func (t *Tree) Builtins() *scope.Builtins { return t.builtins }

// New creates a detached node.
func (t *Tree) New(n Node, pos token.Position) ID {
	t.nodes = append(t.nodes, entry{data: n, pos: pos})
	return ID(len(t.nodes) - 1)
}

// Len is the number of nodes ever created.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

func (t *Tree) at(id ID) *entry {
	if id <= None || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("ast: invalid node id %d", id))
	}
	return &t.nodes[id]
}

// Node returns the payload of id.
func (t *Tree) Node(id ID) Node { return t.at(id).data }

// Set replaces the payload of id, keeping its links.
func (t *Tree) Set(id ID, n Node) { t.at(id).data = n }

// Pos returns the source position id was built from.
func (t *Tree) Pos(id ID) token.Position { return t.at(id).pos }

func (t *Tree) Parent(id ID) ID { return t.at(id).parent }
func (t *Tree) First(id ID) ID  { return t.at(id).first }
func (t *Tree) Last(id ID) ID   { return t.at(id).last }
func (t *Tree) Next(id ID) ID   { return t.at(id).next }
func (t *Tree) Prev(id ID) ID   { return t.at(id).prev }

// Children returns a snapshot of the children of id.
func (t *Tree) Children(id ID) []ID {
	var out []ID
	for c := t.at(id).first; c != None; c = t.nodes[c].next {
		out = append(out, c)
	}
	return out
}

// Child returns the i-th child of id, or None.
func (t *Tree) Child(id ID, i int) ID {
	c := t.at(id).first
	for ; c != None && i > 0; i-- {
		c = t.nodes[c].next
	}
	return c
}

// Count returns the number of children of id.
func (t *Tree) Count(id ID) int {
	n := 0
	for c := t.at(id).first; c != None; c = t.nodes[c].next {
		n++
	}
	return n
}

func (t *Tree) mustBeDetached(id ID) *entry {
	e := t.at(id)
	if e.parent != None || e.prev != None || e.next != None {
		panic(fmt.Sprintf("ast: node %d is already attached", id))
	}
	return e
}

// Append adds a detached child as the last child of parent.
func (t *Tree) Append(parent, child ID) {
	c := t.mustBeDetached(child)
	p := t.at(parent)
	c.parent = parent
	c.prev = p.last
	if p.last != None {
		t.nodes[p.last].next = child
	} else {
		p.first = child
	}
	p.last = child
}

// InsertBefore adds a detached node right before an attached sibling.
func (t *Tree) InsertBefore(sibling, child ID) {
	c := t.mustBeDetached(child)
	s := t.at(sibling)
	if s.parent == None {
		panic(fmt.Sprintf("ast: node %d has no parent", sibling))
	}
	c.parent = s.parent
	c.next = sibling
	c.prev = s.prev
	if s.prev != None {
		t.nodes[s.prev].next = child
	} else {
		t.nodes[s.parent].first = child
	}
	s.prev = child
}

// Remove detaches id, with its subtree, from its parent.
func (t *Tree) Remove(id ID) {
	e := t.at(id)
	if e.parent == None {
		return
	}
	p := &t.nodes[e.parent]
	if e.prev != None {
		t.nodes[e.prev].next = e.next
	} else {
		p.first = e.next
	}
	if e.next != None {
		t.nodes[e.next].prev = e.prev
	} else {
		p.last = e.prev
	}
	e.parent, e.prev, e.next = None, None, None
}

// ReplaceWith puts a detached replacement where old is and detaches old.
func (t *Tree) ReplaceWith(old, replacement ID) {
	r := t.mustBeDetached(replacement)
	o := t.at(old)
	if o.parent == None {
		panic(fmt.Sprintf("ast: node %d has no parent", old))
	}
	r.parent, r.prev, r.next = o.parent, o.prev, o.next
	p := &t.nodes[o.parent]
	if o.prev != None {
		t.nodes[o.prev].next = replacement
	} else {
		p.first = replacement
	}
	if o.next != None {
		t.nodes[o.next].prev = replacement
	} else {
		p.last = replacement
	}
	o.parent, o.prev, o.next = None, None, None
}

// MoveChildren re-attaches every child of from to the end of to.
func (t *Tree) MoveChildren(from, to ID) {
	for _, c := range t.Children(from) {
		t.Remove(c)
		t.Append(to, c)
	}
}

// Graft copies the subtree at root of another tree under parent and
// returns the ID of the copy. Payloads are shared, not cloned.
func (t *Tree) Graft(parent ID, other *Tree, root ID) ID {
	id := t.New(other.Node(root), other.Pos(root))
	for _, c := range other.Children(root) {
		t.Graft(id, other, c)
	}
	if parent != None {
		t.Append(parent, id)
	}
	return id
}

// Preorder yields root and every node below it, parents before children.
func (t *Tree) Preorder(root ID) iter.Seq[ID] {
	return func(yield func(ID) bool) {
		var visit func(ID) bool
		visit = func(id ID) bool {
			if !yield(id) {
				return false
			}
			for c := t.at(id).first; c != None; c = t.nodes[c].next {
				if !visit(c) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}
