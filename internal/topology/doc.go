// Package topology runs a ceph-ansible topology plan against a cluster.
//
// A run picks an installer host (the holder of the first monitor role),
// stages ceph-ansible there and executes the plan with the generated
// inventory. Two staging modes exist: [ModePrebuilt] copies the ceph-ansible
// tree shipped under /usr/share, [ModeSource] clones it from git into a
// virtualenv with a pinned ansible. Staging and execution are separate steps
// so a caller can observe each of them.
package topology
