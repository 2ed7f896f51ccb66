// Package ssh implements remote.Remote over SSH.
//
// A Client keeps one connection per host for the whole run and opens a
// session per command. Connections are established lazily with retry, so
// hosts that are still booting do not fail the run immediately.
package ssh
