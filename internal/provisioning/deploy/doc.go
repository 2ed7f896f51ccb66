// Package deploy stages ceph-ansible on the installer host, runs the
// playbook and distributes client credentials.
package deploy
