package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the timing knobs of a run.
// These values can be customized via environment variables.
type Timeouts struct {
	Playbook       time.Duration // Wall-clock limit of the ansible-playbook run
	HealthInterval time.Duration // Sleep between health checks
	HealthAttempts int           // Health checks before giving up
	SSHDial        time.Duration // Timeout for establishing one SSH connection
	SSHMaxRetries  int           // SSH dial retries
	SSHRetryDelay  time.Duration // Initial delay between SSH dial retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - CEPHRIG_TIMEOUT_PLAYBOOK (default: 70m)
//   - CEPHRIG_HEALTH_INTERVAL (default: 15s)
//   - CEPHRIG_HEALTH_ATTEMPTS (default: 6)
//   - CEPHRIG_SSH_DIAL_TIMEOUT (default: 10s)
//   - CEPHRIG_SSH_MAX_RETRIES (default: 10)
//   - CEPHRIG_SSH_RETRY_DELAY (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		Playbook:       parseDuration("CEPHRIG_TIMEOUT_PLAYBOOK", 70*time.Minute),
		HealthInterval: parseDuration("CEPHRIG_HEALTH_INTERVAL", 15*time.Second),
		HealthAttempts: parseInt("CEPHRIG_HEALTH_ATTEMPTS", 6),
		SSHDial:        parseDuration("CEPHRIG_SSH_DIAL_TIMEOUT", 10*time.Second),
		SSHMaxRetries:  parseInt("CEPHRIG_SSH_MAX_RETRIES", 10),
		SSHRetryDelay:  parseDuration("CEPHRIG_SSH_RETRY_DELAY", 5*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses a positive integer from an environment variable.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i <= 0 {
		return defaultVal
	}

	return i
}
