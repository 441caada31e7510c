// Package dom is the node tree the grid renders into.
//
// A Node stands in for an element box: it has a tag, a class list, text,
// a position relative to its parent and an ordered list of children. The
// grid builds rows and cells out of nodes and the terminal renderer paints
// them; tests inspect them directly.
package dom

import (
	"slices"
	"strings"
)

// Box is an absolute rectangle, as reported to editors.
type Box struct {
	Top, Left     int
	Bottom, Right int
	Width, Height int
	Visible       bool
}

// Node is an element in the render tree.
type Node struct {
	Tag string

	// Text is the node's own content. Cells carry formatted values here.
	Text string

	// Position and size relative to the parent node.
	Top, Left     int
	Width, Height int

	// Hidden nodes are skipped by painters.
	Hidden bool

	parent   *Node
	children []*Node
	classes  []string
}

// NewNode creates a detached node.
func NewNode(tag string, classes ...string) *Node {
	n := &Node{Tag: tag}
	n.AddClass(classes...)
	return n
}

// Parent returns the node's parent, or nil when detached.
func (n *Node) Parent() *Node {
	return n.parent
}

// AppendChild attaches c as the last child of n, detaching it from any
// previous parent first. It returns c.
func (n *Node) AppendChild(c *Node) *Node {
	if c.parent != nil {
		c.parent.RemoveChild(c)
	}
	c.parent = n
	n.children = append(n.children, c)
	return c
}

// RemoveChild detaches c from n. It reports whether c was a child.
func (n *Node) RemoveChild(c *Node) bool {
	i := slices.Index(n.children, c)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	c.parent = nil
	return true
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Empty removes all children and clears the text.
func (n *Node) Empty() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	n.Text = ""
}

// Children returns a copy of the child list.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// ChildCount returns the number of children.
func (n *Node) ChildCount() int {
	return len(n.children)
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// PrevSibling returns the sibling immediately before n, or nil.
func (n *Node) PrevSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := slices.Index(n.parent.children, n)
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

// AddClass adds each class not already present.
func (n *Node) AddClass(classes ...string) {
	for _, c := range classes {
		for _, f := range strings.Fields(c) {
			if !slices.Contains(n.classes, f) {
				n.classes = append(n.classes, f)
			}
		}
	}
}

// RemoveClass removes each named class.
func (n *Node) RemoveClass(classes ...string) {
	for _, c := range classes {
		for _, f := range strings.Fields(c) {
			n.classes = slices.DeleteFunc(n.classes, func(x string) bool { return x == f })
		}
	}
}

// HasClass reports whether class is present.
func (n *Node) HasClass(class string) bool {
	return slices.Contains(n.classes, class)
}

// SetClass adds or removes class.
func (n *Node) SetClass(class string, on bool) {
	if on {
		n.AddClass(class)
	} else {
		n.RemoveClass(class)
	}
}

// Classes returns a copy of the class list in insertion order.
func (n *Node) Classes() []string {
	return slices.Clone(n.classes)
}

// ClassName returns the classes joined by spaces.
func (n *Node) ClassName() string {
	return strings.Join(n.classes, " ")
}

// Box returns the absolute rectangle of n by summing parent offsets.
func (n *Node) Box() Box {
	top, left := n.Top, n.Left
	visible := !n.Hidden
	for p := n.parent; p != nil; p = p.parent {
		top += p.Top
		left += p.Left
		if p.Hidden {
			visible = false
		}
	}
	return Box{
		Top:     top,
		Left:    left,
		Bottom:  top + n.Height,
		Right:   left + n.Width,
		Width:   n.Width,
		Height:  n.Height,
		Visible: visible,
	}
}

// Walk visits n and its descendants depth first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}
