package remote

import (
	"bytes"
	"context"
	"fmt"
)

// WriteFile writes data to path on the remote as the login user.
func WriteFile(ctx context.Context, r Remote, path string, data []byte) error {
	_, err := r.Run(ctx, &Command{
		Args:  Args("cat", Raw(">"), path),
		Stdin: bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to write %s on %s: %w", path, r.Name(), err)
	}
	return nil
}

// SudoWriteFile writes data to path on the remote with root privileges.
// A non-empty perms value is applied with chmod afterwards.
func SudoWriteFile(ctx context.Context, r Remote, path string, data []byte, perms string) error {
	_, err := r.Run(ctx, &Command{
		Args:  Args("sudo", "tee", path, Raw(">"), Raw("/dev/null")),
		Stdin: bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to write %s on %s: %w", path, r.Name(), err)
	}
	if perms == "" {
		return nil
	}
	if _, err := Exec(ctx, r, "sudo", "chmod", perms, path); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	return nil
}

// SudoReadFile returns the contents of a root-owned file on the remote.
func SudoReadFile(ctx context.Context, r Remote, path string) ([]byte, error) {
	var buf bytes.Buffer
	_, err := r.Run(ctx, &Command{
		Args:   Args("sudo", "cat", path),
		Stdout: &buf,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s on %s: %w", path, r.Name(), err)
	}
	return buf.Bytes(), nil
}
