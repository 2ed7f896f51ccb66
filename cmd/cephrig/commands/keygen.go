package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/cephrig/cmd/cephrig/handlers"
	"github.com/imamik/cephrig/internal/util/keygen"
)

// Keygen returns the command generating an SSH key pair for the targets.
//
// Optional flags:
//
//	--output, -o: Private key path; the public key is written next to it with .pub
//	--bits: RSA key size
//	--comment: Comment appended to the public key
func Keygen() *cobra.Command {
	var (
		output  string
		bits    int
		comment string
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an SSH key pair for the targets",
		Long: `Generate an RSA key pair. Add the public key to the authorized_keys of the
test machines and point ssh.private_key_path (or CEPHRIG_SSH_KEY) at the
private key. Existing files are never overwritten.

Examples:
  cephrig keygen
  cephrig keygen -o ~/.ssh/cephrig_ci --comment ci@lab`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return handlers.Keygen(output, bits, comment)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "cephrig_rsa", "Private key path")
	cmd.Flags().IntVar(&bits, "bits", keygen.DefaultBits, "RSA key size")
	cmd.Flags().StringVar(&comment, "comment", "cephrig", "Public key comment")

	return cmd
}
