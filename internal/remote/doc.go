// Package remote defines how cephrig talks to the machines of a test cluster.
//
// A [Remote] runs a [Command] built from tagged arguments: [Literal] arguments
// are shell-quoted before they reach the remote shell, [Raw] arguments are
// passed through untouched so pipes, redirections and command separators keep
// their meaning. Implementations live in internal/platform (SSH) and in tests.
//
// On top of the interface this package provides helpers shared by every
// orchestration step: file uploads, host fact gathering (network interface,
// subnet, package family) and scratch device discovery.
package remote
