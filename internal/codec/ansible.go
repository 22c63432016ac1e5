package codec

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"fabricsim/internal/domain"
)

// AnsibleCodec exports the fabric as an Ansible inventory: one group per
// edge switch holding its hosts, plus one group per switch tier.
type AnsibleCodec struct{}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
}

type ansibleHost struct {
	AnsibleHost string `yaml:"ansible_host"`
	Role        string `yaml:"role"`
	Uplink      string `yaml:"uplink,omitempty"`
}

// Export writes the inventory. Group names are sanitised for Ansible.
func (c *AnsibleCodec) Export(t *domain.Topology, w io.Writer) error {
	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
		},
	}

	for _, n := range t.Nodes() {
		group := groupName(n)
		def, ok := inv.All.Children[group]
		if !ok {
			def = ansibleGroupDef{Hosts: make(map[string]ansibleHost)}
			inv.All.Children[group] = def
		}
		def.Hosts[n.ID] = ansibleHost{
			AnsibleHost: n.Address.String(),
			Role:        string(n.Role),
			Uplink:      n.Parent,
		}
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}

func groupName(n domain.Node) string {
	if n.Role == domain.RoleHost {
		return "hosts_" + sanitize(n.Parent)
	}
	return sanitize(string(n.Role)) + "es"
}

// sanitize maps anything outside [A-Za-z0-9_] to underscore
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
}
