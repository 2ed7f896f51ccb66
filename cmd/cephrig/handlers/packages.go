package handlers

import (
	"context"
	"fmt"
)

// Packages applies a package lifecycle operation (install, upgrade, remove
// or remove-sources) to every target.
func Packages(ctx context.Context, opts Options, op string) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	err = s.runner.Packages(ctx, s.cluster, op)
	p := newPrinter()
	result, style := resultStyle(err)
	p.rowStyled("Packages", fmt.Sprintf("%s %s on %d hosts", op, result, s.cluster.Len()), style)
	p.flush()
	return err
}
