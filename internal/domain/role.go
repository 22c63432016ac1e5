package domain

// Role classifies a node by its tier in the fabric
type Role string

const (
	RoleCore        Role = "core-switch"
	RoleAggregation Role = "aggregation-switch"
	RoleEdge        Role = "edge-switch"
	RoleHost        Role = "host"
)

// Roles lists every role from the root of the tree down
var Roles = []Role{RoleCore, RoleAggregation, RoleEdge, RoleHost}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCore, RoleAggregation, RoleEdge, RoleHost:
		return true
	}
	return false
}

// IsSwitch returns true for every role except host
func (r Role) IsSwitch() bool {
	return r.Valid() && r != RoleHost
}

// Level returns the depth of the role in the tree (core = 0)
func (r Role) Level() int {
	switch r {
	case RoleCore:
		return 0
	case RoleAggregation:
		return 1
	case RoleEdge:
		return 2
	case RoleHost:
		return 3
	}
	return -1
}

// ParentRole returns the role a node of role r must hang from.
// The core has no parent.
func (r Role) ParentRole() (Role, bool) {
	switch r {
	case RoleAggregation:
		return RoleCore, true
	case RoleEdge:
		return RoleAggregation, true
	case RoleHost:
		return RoleEdge, true
	}
	return "", false
}

// ParseRole converts a string to a Role, returning false if unknown
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
