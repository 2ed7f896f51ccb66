// Package converge waits for the deployed cluster to report health.
package converge
