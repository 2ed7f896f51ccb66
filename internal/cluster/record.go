package cluster

// HostRecord is the per-run snapshot of a host used to derive its inventory
// variables. It is built once per host and not modified afterwards.
type HostRecord struct {
	Hostname  string
	Interface string
	Subnet    string
	Roles     []Role

	// Devices are the scratch devices reserved for the host's OSDs, already
	// truncated to the number of OSD roles.
	Devices []string
}

// OSDCount returns the number of OSD roles of the host.
func (r *HostRecord) OSDCount() int {
	return CountPrefix(r.Roles, "osd")
}
