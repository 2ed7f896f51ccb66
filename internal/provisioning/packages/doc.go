// Package packages runs a package lifecycle operation (install, upgrade,
// remove or remove-sources) on every host of the cluster.
package packages
