package bigip

import (
	"context"
	"sort"
)

// Namespace is an intermediate node on a dotted namespace path, such as
// "LocalLB" in "LocalLB.Pool". Nodes carry no schema themselves; they
// exist so callers can walk the hierarchy piecewise and so discovery has
// somewhere to hang the interface listing for each module.
type Namespace struct {
	client     *Client
	name       string
	children   map[string]*Namespace
	interfaces []string
}

// Name returns the node's full dotted path from the root.
func (n *Namespace) Name() string {
	return n.name
}

// Namespace returns the child node of that name, creating and caching it
// on first access.
func (n *Namespace) Namespace(name string) *Namespace {
	if child, ok := n.children[name]; ok {
		return child
	}
	child := &Namespace{
		client:   n.client,
		name:     n.name + "." + name,
		children: make(map[string]*Namespace),
	}
	n.children[name] = child
	return child
}

// Service resolves the named interface under this node into a schema
// client. It is shorthand for Resolve on the joined path.
func (n *Namespace) Service(ctx context.Context, name string) (*Service, error) {
	return n.client.Resolve(ctx, n.name+"."+name)
}

// Interfaces returns the interface names discovery recorded under this
// module, sorted. Empty until Namespaces has run on the owning client.
func (n *Namespace) Interfaces() []string {
	out := make([]string, len(n.interfaces))
	copy(out, n.interfaces)
	sort.Strings(out)
	return out
}
