package remote

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// Arg is a single shell argument. The zero value is an empty literal.
type Arg struct {
	value string
	raw   bool
}

// Literal returns an argument that is quoted for the remote shell.
func Literal(s string) Arg {
	return Arg{value: s}
}

// Raw returns an argument that is passed to the remote shell verbatim.
// Use it for pipes, redirections, separators and paths relying on tilde expansion.
func Raw(s string) Arg {
	return Arg{value: s, raw: true}
}

// Value returns the unquoted argument text.
func (a Arg) Value() string { return a.value }

// IsRaw reports whether the argument bypasses quoting.
func (a Arg) IsRaw() bool { return a.raw }

// String renders the argument as it will appear on the command line.
func (a Arg) String() string {
	if a.raw {
		return a.value
	}
	if a.value == "" {
		return "''"
	}
	return shellquote.Join(a.value)
}

// Args builds an argument list. Strings become literals, Arg values are kept
// as they are, and nested []Arg or []string slices are flattened in place.
func Args(parts ...any) []Arg {
	out := make([]Arg, 0, len(parts))
	for _, p := range parts {
		switch v := p.(type) {
		case Arg:
			out = append(out, v)
		case []Arg:
			out = append(out, v...)
		case string:
			out = append(out, Literal(v))
		case []string:
			for _, s := range v {
				out = append(out, Literal(s))
			}
		default:
			out = append(out, Literal(fmt.Sprint(v)))
		}
	}
	return out
}

// Render joins arguments into a single shell command line.
func Render(args []Arg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, " ")
}

// Command describes one remote invocation.
type Command struct {
	Args []Arg

	// Stdin, when set, is streamed to the remote process.
	Stdin io.Reader

	// Stdout receives a copy of the remote standard output in addition to
	// Result.Stdout.
	Stdout io.Writer

	// Timeout bounds the wall-clock duration of the command. Zero means no limit
	// beyond the caller's context.
	Timeout time.Duration

	// IgnoreStatus disables the non-zero exit check. When false a non-zero
	// exit status is returned as an *ExitError.
	IgnoreStatus bool
}

// String returns the rendered command line.
func (c *Command) String() string {
	return Render(c.Args)
}

// Result is the outcome of a finished command.
type Result struct {
	ExitStatus int
	Stdout     string
	Stderr     string
}

// Remote executes commands on a single machine.
type Remote interface {
	// Name returns the hostname the remote is known by in the cluster.
	Name() string

	// Run executes the command and waits for it to finish. It returns an
	// *ExitError for a non-zero exit unless cmd.IgnoreStatus is set.
	Run(ctx context.Context, cmd *Command) (*Result, error)
}

// ExitError reports a command that exited with a non-zero status while
// status checking was enabled.
type ExitError struct {
	Host    string
	Command string
	Status  int
	Stderr  string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command failed on %s with status %d: %s", e.Host, e.Status, e.Command)
	if e.Stderr != "" {
		msg += "\n" + strings.TrimSpace(e.Stderr)
	}
	return msg
}

// CheckStatus converts a non-zero exit into an *ExitError unless the command
// opted out of status checking. Remote implementations call it after the
// process finished.
func CheckStatus(host string, cmd *Command, res *Result) error {
	if cmd.IgnoreStatus || res.ExitStatus == 0 {
		return nil
	}
	return &ExitError{
		Host:    host,
		Command: cmd.String(),
		Status:  res.ExitStatus,
		Stderr:  res.Stderr,
	}
}

// Exec runs a checked command built from parts and returns its stdout.
func Exec(ctx context.Context, r Remote, parts ...any) (string, error) {
	res, err := r.Run(ctx, &Command{Args: Args(parts...)})
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Try runs a command built from parts with status checking disabled.
func Try(ctx context.Context, r Remote, parts ...any) (*Result, error) {
	return r.Run(ctx, &Command{Args: Args(parts...), IgnoreStatus: true})
}
