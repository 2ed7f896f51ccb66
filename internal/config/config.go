package config

import (
	"os"
	"strings"
)

// ApplyDefaults fills unset fields. Environment variables supply secrets
// that are usually kept out of config files.
func (c *Config) ApplyDefaults() {
	if c.SSH.User == "" {
		c.SSH.User = DefaultSSHUser
	}
	if c.SSH.Port == 0 {
		c.SSH.Port = DefaultSSHPort
	}
	if c.SSH.PrivateKeyPath == "" {
		c.SSH.PrivateKeyPath = os.Getenv("CEPHRIG_SSH_KEY")
	}

	ca := &c.CephAnsible
	if ca.GitBaseURL == "" {
		ca.GitBaseURL = DefaultGitBaseURL
	}
	if ca.Repo == "" {
		ca.Repo = strings.TrimRight(ca.GitBaseURL, "/") + "/" + CephAnsibleRepoName
	}
	if ca.Branch == "" {
		ca.Branch = DefaultBranch
	}
	if ca.AnsibleVersion == "" {
		ca.AnsibleVersion = DefaultAnsibleVersion
	}
	if len(ca.Playbook) == 0 {
		ca.Playbook = DefaultPlaybook()
	}
	if ca.Vars == nil {
		ca.Vars = map[string]any{}
	}

	in := &c.Install
	if in.Project == "" {
		in.Project = DefaultProject
	}
	if len(in.Packages) == 0 {
		in.Packages = append([]string(nil), DefaultPackages...)
	}
	if in.Repository.KeyURL == "" {
		in.Repository.KeyURL = DefaultKeyURL
	}
	if in.Repository.KeyIdentity == "" {
		in.Repository.KeyIdentity = DefaultKeyIdentity
	}

	if c.HCloud.Token == "" {
		c.HCloud.Token = os.Getenv("HCLOUD_TOKEN")
	}
	if c.Archive.AccessKey == "" {
		c.Archive.AccessKey = os.Getenv("CEPHRIG_S3_ACCESS_KEY")
	}
	if c.Archive.SecretKey == "" {
		c.Archive.SecretKey = os.Getenv("CEPHRIG_S3_SECRET_KEY")
	}
}

// ShouldWaitForHealth reports whether cluster health is polled after the
// playbook run.
func (c *CephAnsibleConfig) ShouldWaitForHealth() bool {
	return c.WaitForHealth == nil || *c.WaitForHealth
}

// ResolveFlavor picks the build variant: a local path wins, then valgrind,
// then coverage, then the configured flavor.
func (i *InstallConfig) ResolveFlavor() string {
	switch {
	case i.Path != "":
		return "local"
	case truthy(i.Valgrind):
		return "notcmalloc"
	case i.Coverage:
		return "gcov"
	case i.Flavor != "":
		return i.Flavor
	default:
		return DefaultFlavor
	}
}

// truthy mirrors how loosely typed YAML values are read as switches.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false") && t != "0"
	case int:
		return t != 0
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// Truthy reports whether a loosely typed config value is set to true.
func Truthy(v any) bool {
	return truthy(v)
}
