package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/imamik/cephrig/internal/remote"
	"github.com/imamik/cephrig/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 10
	defaultRetryDelay  = 5 * time.Second
	defaultMaxDelay    = 30 * time.Second
	closeGrace         = 5 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	// Name is the hostname the remote is known by in the cluster. Defaults
	// to Host.
	Name string

	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used; test machines are
	// reimaged between runs and their host keys change.
	HostKeyCallback ssh.HostKeyCallback
}

// Client runs commands on one host. It is safe for concurrent use; each
// command gets its own session on a shared connection.
type Client struct {
	config *Config
	signer ssh.Signer

	mu   sync.Mutex
	conn *ssh.Client
}

var _ remote.Remote = (*Client)(nil)

// NewClient creates a new SSH client and validates the private key. No
// connection is made until the first command.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Name == "" {
		configCopy.Name = configCopy.Host
	}
	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // test machines are reimaged between runs
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Name implements remote.Remote.
func (c *Client) Name() string {
	return c.config.Name
}

// Address returns the dialed host:port.
func (c *Client) Address() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// Run implements remote.Remote. When the context ends or cmd.Timeout
// elapses the session is closed and the context error is returned wrapped.
func (c *Client) Run(ctx context.Context, cmd *remote.Command) (*remote.Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	conn, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}

	session, err := conn.NewSession()
	if err != nil {
		c.reset(conn)
		return nil, fmt.Errorf("failed to create SSH session on %s: %w", c.config.Name, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	if cmd.Stdout != nil {
		session.Stdout = io.MultiWriter(&stdout, cmd.Stdout)
	}
	session.Stderr = &stderr
	if cmd.Stdin != nil {
		session.Stdin = cmd.Stdin
	}

	line := cmd.String()
	if err := session.Start(line); err != nil {
		return nil, fmt.Errorf("failed to start command on %s: %w", c.config.Name, err)
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		_ = session.Close()
		// the copy goroutines still own the buffers until Wait returns.
		// A peer that never acknowledges the close loses the connection.
		select {
		case <-done:
		case <-time.After(closeGrace):
			c.reset(conn)
			<-done
		}
		return &remote.Result{Stdout: stdout.String(), Stderr: stderr.String()},
			fmt.Errorf("command on %s interrupted: %w", c.config.Name, ctx.Err())
	}

	res := &remote.Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if waitErr != nil {
		var exitErr *ssh.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("command failed on %s: %w", c.config.Name, waitErr)
		}
		res.ExitStatus = exitErr.ExitStatus()
	}

	if err := remote.CheckStatus(c.config.Name, cmd, res); err != nil {
		return res, err
	}
	return res, nil
}

// Close closes the connection if one is open.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// connect returns the shared connection, dialing with retry if needed.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return c.conn, nil
	}

	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := c.Address()
	var client *ssh.Client

	err := retry.Do(ctx, func() error {
		var dialErr error
		client, dialErr = ssh.Dial("tcp", addr, config)
		if dialErr != nil && strings.Contains(dialErr.Error(), "unable to authenticate") {
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}

	c.conn = client
	return client, nil
}

// reset drops conn so the next command reconnects.
func (c *Client) reset(conn *ssh.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == conn {
		_ = c.conn.Close()
		c.conn = nil
	}
}
