package handlers

import (
	"github.com/imamik/cephrig/internal/util/keygen"
)

// generateKeyPair creates the key pair (for testing injection).
var generateKeyPair = keygen.GenerateRSAKeyPair

// Keygen writes a new SSH key pair to path and path.pub. The public half
// goes into the authorized_keys of the test machines; the private half is
// referenced by ssh.private_key_path.
func Keygen(path string, bits int, comment string) error {
	pair, err := generateKeyPair(bits)
	if err != nil {
		return err
	}
	if err := pair.WithComment(comment).Write(path); err != nil {
		return err
	}
	p := newPrinter()
	p.row("Private", path)
	p.row("Public", path+".pub")
	p.flush()
	return nil
}
