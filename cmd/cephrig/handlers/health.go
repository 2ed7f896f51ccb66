package handlers

import (
	"context"
)

// Health polls the health of an already deployed cluster on its first
// monitor and prints the final status.
func Health(ctx context.Context, opts Options) error {
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	status, err := s.runner.Health(ctx, s.cluster)
	if status != "" {
		p := newPrinter()
		p.rowStyled("Health", string(status), statusStyle(status))
		p.flush()
	}
	return err
}
