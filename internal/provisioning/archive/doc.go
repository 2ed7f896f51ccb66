// Package archive uploads the documents and playbook log of a run to
// S3-compatible object storage.
package archive
