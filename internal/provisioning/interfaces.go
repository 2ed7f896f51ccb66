package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the logic of this phase.
	Provision(ctx *Context) error
}

// Logger is the minimal printf-style logger every component accepts.
type Logger interface {
	Printf(format string, v ...any)
}
