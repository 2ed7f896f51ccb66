// Package cluster models the machines of a Ceph test cluster and the roles
// they hold.
//
// # Roles and groups
//
// A role is a string such as "mon.a", "osd.0" or "client.0". Its type is the
// part before the first dot, and the type selects the ansible group through
// an ordered prefix table:
//
//   - mon: mons
//   - mds: mdss
//   - osd: osds
//   - client: clients
//
// Roles with no entry in the table (rgw, mgr) belong to no group.
//
// # Hosts
//
// A [Cluster] holds one [Host] per remote, sorted by hostname. The first
// host holding a monitor role runs ceph-ansible; see [Cluster.FirstMon].
// A [HostRecord] is the immutable inventory view of a host, built once when the
// inventory is generated.
package cluster
