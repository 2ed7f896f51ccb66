package cluster

import (
	"sort"
	"strings"
)

// Role is a fine-grained function assigned to a host, e.g. "osd.0".
type Role string

// Type returns the role type, the part before the first dot.
func (r Role) Type() string {
	t, _, _ := strings.Cut(string(r), ".")
	return t
}

// GroupPrefix binds a role prefix to the inventory group it populates.
type GroupPrefix struct {
	Prefix string
	Group  string
}

// GroupTable lists the inventory groups generated from roles.
var GroupTable = []GroupPrefix{
	{Prefix: "mon", Group: "mons"},
	{Prefix: "mds", Group: "mdss"},
	{Prefix: "osd", Group: "osds"},
	{Prefix: "client", Group: "clients"},
}

// Groups returns the generated group names in sorted order.
func Groups() []string {
	groups := make([]string, 0, len(GroupTable))
	for _, gp := range GroupTable {
		groups = append(groups, gp.Group)
	}
	sort.Strings(groups)
	return groups
}

// PrefixForGroup returns the role prefix feeding group.
func PrefixForGroup(group string) (string, bool) {
	for _, gp := range GroupTable {
		if gp.Group == group {
			return gp.Prefix, true
		}
	}
	return "", false
}

// GroupForRole returns the group a role belongs to.
func GroupForRole(role Role) (string, bool) {
	for _, gp := range GroupTable {
		if MatchesPrefix(role, gp.Prefix) {
			return gp.Group, true
		}
	}
	return "", false
}

// MatchesPrefix reports whether role starts with prefix.
func MatchesPrefix(role Role, prefix string) bool {
	return strings.HasPrefix(string(role), prefix)
}

// HasPrefix returns a role predicate for prefix.
func HasPrefix(prefix string) func(Role) bool {
	return func(r Role) bool { return MatchesPrefix(r, prefix) }
}

// IsType returns a role predicate matching roles of exactly type t, so
// "client" matches "client.0" but not "clients".
func IsType(t string) func(Role) bool {
	return func(r Role) bool { return r.Type() == t }
}

// CountPrefix counts roles starting with prefix.
func CountPrefix(roles []Role, prefix string) int {
	n := 0
	for _, r := range roles {
		if MatchesPrefix(r, prefix) {
			n++
		}
	}
	return n
}
