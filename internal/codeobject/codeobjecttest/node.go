package codeobjecttest

import (
	"github.com/amdgpu-tools/disassembler/internal/codeobject"
)

// BadKind is a node reporting an arbitrary kind value.
type BadKind codeobject.Kind

func (k BadKind) Kind() (codeobject.Kind, error) { return codeobject.Kind(k), nil }

func (BadKind) StringValue() ([]byte, error) {
	return nil, codeobject.Errorf(codeobject.StatusInvalidArgument, "string value on bad node")
}

func (BadKind) ListSize() (int, error) {
	return 0, codeobject.Errorf(codeobject.StatusInvalidArgument, "list size on bad node")
}

func (BadKind) ListItem(int) (codeobject.Node, error) {
	return nil, codeobject.Errorf(codeobject.StatusInvalidArgument, "list index on bad node")
}

func (BadKind) ForEach(func(key, value codeobject.Node) error) error {
	return codeobject.Errorf(codeobject.StatusInvalidArgument, "map iterate on bad node")
}

// Broken is a node that fails every query with its status.
type Broken codeobject.Status

func (b Broken) err() error {
	return codeobject.Errorf(codeobject.Status(b), "broken node")
}

func (b Broken) Kind() (codeobject.Kind, error)                 { return codeobject.KindNull, b.err() }
func (b Broken) StringValue() ([]byte, error)                   { return nil, b.err() }
func (b Broken) ListSize() (int, error)                         { return 0, b.err() }
func (b Broken) ListItem(int) (codeobject.Node, error)          { return nil, b.err() }
func (b Broken) ForEach(func(_, _ codeobject.Node) error) error { return b.err() }

// FailOnVisit wraps root so that the n-th node touched by a walk (counting
// from 1, root included) fails every query with status. Nodes reached
// through the wrapper are wrapped too.
func FailOnVisit(root codeobject.Node, n int, status codeobject.Status) codeobject.Node {
	c := &visitCounter{failAt: n, status: status}
	return c.wrap(root)
}

type visitCounter struct {
	seen   int
	failAt int
	status codeobject.Status
}

func (c *visitCounter) wrap(n codeobject.Node) codeobject.Node {
	return &countedNode{inner: n, counter: c}
}

type countedNode struct {
	inner   codeobject.Node
	counter *visitCounter
	visited bool
	failed  bool
}

func (n *countedNode) touch() error {
	if !n.visited {
		n.visited = true
		n.counter.seen++
		n.failed = n.counter.seen == n.counter.failAt
	}
	if n.failed {
		return codeobject.Errorf(n.counter.status, "injected failure on node %d", n.counter.failAt)
	}
	return nil
}

func (n *countedNode) Kind() (codeobject.Kind, error) {
	if err := n.touch(); err != nil {
		return codeobject.KindNull, err
	}
	return n.inner.Kind()
}

func (n *countedNode) StringValue() ([]byte, error) {
	if err := n.touch(); err != nil {
		return nil, err
	}
	return n.inner.StringValue()
}

func (n *countedNode) ListSize() (int, error) {
	if err := n.touch(); err != nil {
		return 0, err
	}
	return n.inner.ListSize()
}

func (n *countedNode) ListItem(i int) (codeobject.Node, error) {
	if err := n.touch(); err != nil {
		return nil, err
	}
	item, err := n.inner.ListItem(i)
	if err != nil {
		return nil, err
	}
	return n.counter.wrap(item), nil
}

func (n *countedNode) ForEach(visit func(key, value codeobject.Node) error) error {
	if err := n.touch(); err != nil {
		return err
	}
	return n.inner.ForEach(func(key, value codeobject.Node) error {
		return visit(n.counter.wrap(key), n.counter.wrap(value))
	})
}
