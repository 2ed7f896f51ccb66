package testing

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/remote"
)

// Invocation is one command received by a FakeRemote.
type Invocation struct {
	Command string
	Stdin   string
	Timeout time.Duration
	Ignored bool
}

type response struct {
	match   string
	outputs []string
	status  int
	err     error
	calls   int
}

// FakeRemote is a scripted remote.Remote. Responses are matched by
// substring against the rendered command line; the most recently registered
// match wins. Unmatched commands succeed with empty output.
type FakeRemote struct {
	host string

	mu          sync.Mutex
	responses   []*response
	invocations []Invocation
}

// NewFakeRemote returns a fake remote named host.
func NewFakeRemote(host string) *FakeRemote {
	return &FakeRemote{host: host}
}

// Name implements remote.Remote.
func (f *FakeRemote) Name() string { return f.host }

// On answers commands containing match with stdout and exit status 0.
func (f *FakeRemote) On(match, stdout string) *FakeRemote {
	return f.OnSequence(match, stdout)
}

// OnSequence answers successive matching commands with successive outputs.
// The last output repeats once the sequence is used up.
func (f *FakeRemote) OnSequence(match string, outputs ...string) *FakeRemote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{match: match, outputs: outputs})
	return f
}

// OnExit answers matching commands with stdout and a non-zero exit status.
func (f *FakeRemote) OnExit(match, stdout string, status int) *FakeRemote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{match: match, outputs: []string{stdout}, status: status})
	return f
}

// OnError fails matching commands with err, as a broken transport would.
func (f *FakeRemote) OnError(match string, err error) *FakeRemote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, &response{match: match, err: err})
	return f
}

// Run implements remote.Remote.
func (f *FakeRemote) Run(ctx context.Context, cmd *remote.Command) (*remote.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	line := cmd.String()
	var stdin string
	if cmd.Stdin != nil {
		data, err := io.ReadAll(cmd.Stdin)
		if err != nil {
			return nil, err
		}
		stdin = string(data)
	}

	f.mu.Lock()
	f.invocations = append(f.invocations, Invocation{Command: line, Stdin: stdin, Timeout: cmd.Timeout, Ignored: cmd.IgnoreStatus})
	resp := f.lookup(line)
	res := &remote.Result{}
	var err error
	if resp != nil {
		err = resp.err
		res.ExitStatus = resp.status
		if len(resp.outputs) > 0 {
			idx := resp.calls
			if idx >= len(resp.outputs) {
				idx = len(resp.outputs) - 1
			}
			res.Stdout = resp.outputs[idx]
		}
		resp.calls++
	}
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if cmd.Stdout != nil && res.Stdout != "" {
		if _, werr := io.WriteString(cmd.Stdout, res.Stdout); werr != nil {
			return nil, werr
		}
	}
	if err := remote.CheckStatus(f.host, cmd, res); err != nil {
		return res, err
	}
	return res, nil
}

func (f *FakeRemote) lookup(line string) *response {
	for i := len(f.responses) - 1; i >= 0; i-- {
		if strings.Contains(line, f.responses[i].match) {
			return f.responses[i]
		}
	}
	return nil
}

// Invocations returns every command received so far.
func (f *FakeRemote) Invocations() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.invocations...)
}

// Commands returns the rendered command lines received so far.
func (f *FakeRemote) Commands() []string {
	inv := f.Invocations()
	out := make([]string, len(inv))
	for i, c := range inv {
		out[i] = c.Command
	}
	return out
}

// Count returns how many commands contained match.
func (f *FakeRemote) Count(match string) int {
	n := 0
	for _, c := range f.Commands() {
		if strings.Contains(c, match) {
			n++
		}
	}
	return n
}

// Index returns the position of the first command containing match, or -1.
func (f *FakeRemote) Index(match string) int {
	for i, c := range f.Commands() {
		if strings.Contains(c, match) {
			return i
		}
	}
	return -1
}

// Written returns the stdin of the last command that mentions path, which is
// how remote.WriteFile and friends deliver file contents.
func (f *FakeRemote) Written(path string) (string, bool) {
	inv := f.Invocations()
	for i := len(inv) - 1; i >= 0; i-- {
		if inv[i].Stdin != "" && strings.Contains(inv[i].Command, path) {
			return inv[i].Stdin, true
		}
	}
	return "", false
}

// NewHost returns a cluster host backed by r with the given roles.
func NewHost(r remote.Remote, roles ...string) *cluster.Host {
	h := &cluster.Host{Remote: r}
	for _, role := range roles {
		h.Roles = append(h.Roles, cluster.Role(role))
	}
	return h
}

// WithFacts sets host facts and returns the host.
func WithFacts(h *cluster.Host, iface, cidr string, pkg remote.PackageType) *cluster.Host {
	h.Facts = &remote.Facts{Interface: iface, CIDR: cidr, PackageType: pkg}
	return h
}

// NewCluster builds a cluster from hosts.
func NewCluster(hosts ...*cluster.Host) *cluster.Cluster {
	return cluster.New(hosts...)
}
