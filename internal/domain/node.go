package domain

import "net/netip"

// Node represents a switch or host in the fabric
type Node struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
	// Group keys the address pool the node draws from
	Group   string     `json:"group"`
	Parent  string     `json:"parent,omitempty"`
	Address netip.Addr `json:"address"`
}

// NewNode creates a node without an address
func NewNode(id string, role Role, group, parent string) Node {
	return Node{
		ID:     id,
		Role:   role,
		Group:  group,
		Parent: parent,
	}
}

// WithAddress returns a copy of the node carrying addr
func (n Node) WithAddress(addr netip.Addr) Node {
	n.Address = addr
	return n
}

// IsSwitch reports whether the node forwards traffic for others
func (n Node) IsSwitch() bool {
	return n.Role.IsSwitch()
}
