// Package s3 provides a client for S3-compatible object storage used to
// archive the inventory, playbook and ansible output of a run.
package s3
