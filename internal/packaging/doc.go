// Package packaging manages the Debian package lifecycle of a project on a
// remote host: signing key and repository registration, pinned installs,
// upgrades and removal.
//
// Every install pins the exact version obtained from a [Resolver]; an
// unpinned package name is never passed to apt-get.
package packaging
