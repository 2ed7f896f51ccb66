// Package documents renders the inventory and playbook of a run into local
// temp files and records them in the run state.
package documents
