package config

// Defaults applied by [Config.ApplyDefaults].
const (
	// DefaultProject is the package project installed and registered.
	DefaultProject = "ceph"

	// DefaultBranch is the ceph-ansible branch checked out in source mode.
	DefaultBranch = "master"

	// DefaultGitBaseURL prefixes repository names when no repo is configured.
	DefaultGitBaseURL = "https://github.com/ceph/"

	// DefaultAnsibleVersion is pinned inside the source-mode virtualenv.
	DefaultAnsibleVersion = "1.9.4"

	// DefaultSSHUser is the login user on test machines.
	DefaultSSHUser = "ubuntu"

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultFlavor is the build variant installed when nothing overrides it.
	DefaultFlavor = "basic"

	// DefaultKeyURL serves the release signing key.
	DefaultKeyURL = "https://download.ceph.com/keys/autobuild.asc"

	// DefaultKeyIdentity identifies the release key among registered apt keys.
	DefaultKeyIdentity = "Ceph automated package"

	// CephAnsibleRepoName is appended to the git base URL.
	CephAnsibleRepoName = "ceph-ansible.git"
)

// DefaultPackages is the deb package set installed for a ceph project.
var DefaultPackages = []string{
	"ceph",
	"ceph-common",
	"ceph-mds",
	"ceph-fuse",
	"ceph-test",
	"radosgw",
	"python-ceph",
	"librados2",
	"librbd1",
	"libcephfs1",
	"rbd-fuse",
}

// DefaultPlaybook is the topology plan applied when none is configured.
// Groups without hosts are skipped by ansible.
func DefaultPlaybook() []Play {
	plays := make([]Play, 0, 6)
	for _, p := range [][2]string{
		{"mons", "ceph-mon"},
		{"osds", "ceph-osd"},
		{"mdss", "ceph-mds"},
		{"rgws", "ceph-rgw"},
		{"clients", "ceph-client"},
		{"restapis", "ceph-restapi"},
	} {
		plays = append(plays, Play{Hosts: p[0], Become: true, Roles: []string{p[1]}})
	}
	return plays
}
