// Package lineage rebuilds the parent/child forest recorded in a finished grid.
//
// Every grid cell has a node in a fixed arena indexed by y*width+x, plus one
// synthetic super-root whose children are the seeded roots. Nodes refer to each
// other by NodeID. A Tree is a read-only snapshot: it must be rebuilt after the
// grid it came from changes.
package lineage

import "lichtenberg/internal/core"

// NodeID indexes the node arena.
type NodeID int32

// NoNode is the null NodeID.
const NoNode NodeID = -1

// Node is one arena entry.
type Node struct {
	ID     NodeID
	X, Y   int
	Depth  int // grid depth metric copied at build time
	Level  int // parent hops to the super-root; seeded roots are level 1
	Parent NodeID
	Linked bool

	firstChild  NodeID
	nextSibling NodeID
}

// Leaf is a linked node without children.
type Leaf struct {
	ID    NodeID
	X, Y  int
	Depth int // parent hops to the super-root
}

// Tree is the lineage forest of one grid snapshot.
type Tree struct {
	w, h  int
	nodes []Node
	root  NodeID
}

// New links every broken cell reachable from a seeded root. Seeded roots are
// broken, uninsulated cells without a direction; a cell becomes the child of
// the neighbor its direction points at.
func New(g *core.Grid) *Tree {
	w, h := g.Width(), g.Height()
	n := w * h
	t := &Tree{w: w, h: h, nodes: make([]Node, n+1), root: NodeID(n)}
	cells := g.Cells()
	for i := 0; i < n; i++ {
		t.nodes[i] = Node{
			ID: NodeID(i), X: i % w, Y: i / w,
			Depth:       cells[i].Depth,
			Parent:      NoNode,
			firstChild:  NoNode,
			nextSibling: NoNode,
		}
	}
	t.nodes[t.root] = Node{ID: t.root, X: -1, Y: -1, Parent: NoNode, Linked: true, firstChild: NoNode, nextSibling: NoNode}

	stack := []NodeID{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == t.root {
			for i, c := range cells {
				if c.Broken && !c.Insulated && c.Direction == core.DirNone {
					t.link(id, NodeID(i))
					stack = append(stack, NodeID(i))
				}
			}
			continue
		}
		p := t.nodes[id]
		for _, d := range core.Neighbors {
			dx, dy := d.Offset()
			nx, ny := p.X+dx, p.Y+dy
			if !g.In(nx, ny) {
				continue
			}
			child := NodeID(ny*w + nx)
			c := cells[child]
			if !c.Broken || c.Direction != d.Opposite() || t.nodes[child].Linked {
				continue
			}
			t.link(id, child)
			stack = append(stack, child)
		}
	}
	return t
}

// link prepends child to parent's child list.
func (t *Tree) link(parent, child NodeID) {
	c := &t.nodes[child]
	p := &t.nodes[parent]
	c.Parent = parent
	c.Linked = true
	c.Level = p.Level + 1
	c.nextSibling = p.firstChild
	p.firstChild = child
}

// Width returns the grid width the tree was built from.
func (t *Tree) Width() int { return t.w }

// Height returns the grid height the tree was built from.
func (t *Tree) Height() int { return t.h }

// Root returns the super-root.
func (t *Tree) Root() NodeID { return t.root }

// ID returns the node id of (x, y). Coordinates are not checked.
func (t *Tree) ID(x, y int) NodeID { return NodeID(y*t.w + x) }

// Node returns the node of (x, y). Cells that were never linked return a node
// with Linked false and no parent.
func (t *Tree) Node(x, y int) Node { return t.nodes[y*t.w+x] }

// At returns the node with the given id.
func (t *Tree) At(id NodeID) Node { return t.nodes[id] }

// Parent returns id's parent, NoNode for the super-root and unlinked nodes.
func (t *Tree) Parent(id NodeID) NodeID { return t.nodes[id].Parent }

// Children lists id's children, most recently linked first.
func (t *Tree) Children(id NodeID) []NodeID {
	var out []NodeID
	for c := t.nodes[id].firstChild; c != NoNode; c = t.nodes[c].nextSibling {
		out = append(out, c)
	}
	return out
}

// Ancestors returns id followed by each ancestor up to its seeded root. The
// super-root is not included. Unlinked nodes return nil.
func (t *Tree) Ancestors(id NodeID) []NodeID {
	if !t.nodes[id].Linked || id == t.root {
		return nil
	}
	var out []NodeID
	for cur := id; cur != t.root; cur = t.nodes[cur].Parent {
		out = append(out, cur)
	}
	return out
}

// Base returns the seeded root id descends from, or NoNode if id is unlinked.
func (t *Tree) Base(id NodeID) NodeID {
	chain := t.Ancestors(id)
	if len(chain) == 0 {
		return NoNode
	}
	return chain[len(chain)-1]
}

// Leaves lists every linked node without children in row-major order.
func (t *Tree) Leaves() []Leaf {
	var out []Leaf
	for i := range t.nodes[:t.root] {
		n := &t.nodes[i]
		if n.Linked && n.firstChild == NoNode {
			out = append(out, Leaf{ID: n.ID, X: n.X, Y: n.Y, Depth: n.Level})
		}
	}
	return out
}

// Path returns the cells connecting (x1, y1) to (x2, y2) through their nearest
// common ancestor, both ends included. It is empty when either cell is
// unlinked or the two descend from different seeded roots.
func (t *Tree) Path(x1, y1, x2, y2 int) []core.Point {
	a, b := t.ID(x1, y1), t.ID(x2, y2)
	if !t.nodes[a].Linked || !t.nodes[b].Linked {
		return nil
	}
	if a == b {
		return []core.Point{{X: x1, Y: y1}}
	}

	up := t.Ancestors(a)
	seen := make(map[NodeID]int, len(up))
	for i, id := range up {
		if id == b {
			return t.points(up[:i+1])
		}
		seen[id] = i
	}

	var down []NodeID
	for cur := b; cur != t.root; cur = t.nodes[cur].Parent {
		if i, ok := seen[cur]; ok {
			path := t.points(up[:i+1])
			for j := len(down) - 1; j >= 0; j-- {
				n := t.nodes[down[j]]
				path = append(path, core.Point{X: n.X, Y: n.Y})
			}
			return path
		}
		down = append(down, cur)
	}
	return nil
}

func (t *Tree) points(ids []NodeID) []core.Point {
	out := make([]core.Point, len(ids))
	for i, id := range ids {
		out[i] = core.Point{X: t.nodes[id].X, Y: t.nodes[id].Y}
	}
	return out
}
