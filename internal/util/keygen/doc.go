// Package keygen generates RSA key pairs for SSH authentication.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public). The cephrig keygen command writes them to disk so the
// public half can be added to the test machines' authorized_keys.
package keygen
