// Package provisioning provides the run pipeline shared by every cephrig
// command that touches a cluster.
//
// # Core Types
//
// Context carries configuration, the cluster, run state, metrics and the
// observer. Phase defines a step with Name() and Provision() methods.
// State accumulates results from each phase (inventory, staged documents,
// playbook output, health status).
package provisioning
