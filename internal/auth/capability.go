// ABOUTME: WordPress-style capabilities and the role to capability mapping
// ABOUTME: Menu pages and action endpoints are gated on a single capability each

package auth

import (
	"slices"

	"github.com/2389/entrydesk/internal/store"
)

// Capability names a permission, using WordPress capability names where one exists.
type Capability string

const (
	CapRead          Capability = "read"
	CapManageOptions Capability = "manage_options"
	CapExport        Capability = "export"
)

var roleCapabilities = map[store.Role][]Capability{
	store.RoleAdministrator: {CapRead, CapManageOptions, CapExport},
	store.RoleEditor:        {CapRead, CapExport},
	store.RoleSubscriber:    {CapRead},
}

// KnownCapability reports whether some role grants c.
func KnownCapability(c Capability) bool {
	for _, caps := range roleCapabilities {
		if slices.Contains(caps, c) {
			return true
		}
	}
	return false
}

// Capabilities returns the capabilities granted to role. Unknown roles get none.
func Capabilities(role store.Role) []Capability {
	return slices.Clone(roleCapabilities[role])
}

// RoleHas reports whether role grants capability c.
func RoleHas(role store.Role, c Capability) bool {
	return slices.Contains(roleCapabilities[role], c)
}
