package provisioning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/imamik/cephrig/internal/cluster"
	"github.com/imamik/cephrig/internal/hostvars"
)

// ValidationError represents a configuration validation error or warning.
type ValidationError struct {
	Field    string // Configuration field that failed validation
	Message  string // Human-readable error message
	Severity string // "error" or "warning"
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", ve.Severity, ve.Field, ve.Message)
}

// IsError returns true if this is an error (not a warning).
func (ve ValidationError) IsError() bool {
	return ve.Severity == "error"
}

// ValidationPhase implements the Phase interface for pre-flight validation.
type ValidationPhase struct{}

// NewValidationPhase creates a new validation phase.
func NewValidationPhase() *ValidationPhase {
	return &ValidationPhase{}
}

// Name implements the Phase interface.
func (vp *ValidationPhase) Name() string {
	return "validation"
}

// Provision implements the Phase interface.
func (vp *ValidationPhase) Provision(ctx *Context) error {
	ctx.Observer.Printf("[Validation] Running pre-flight validation...")

	var errs []ValidationError
	for _, ve := range validate(ctx) {
		if ve.IsError() {
			errs = append(errs, ve)
			continue
		}
		ctx.Observer.Event(Event{
			Type:     EventValidationWarning,
			Phase:    vp.Name(),
			Resource: ve.Field,
			Message:  ve.Message,
		})
	}

	if len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			ctx.Observer.Event(Event{
				Type:     EventValidationError,
				Phase:    vp.Name(),
				Resource: e.Field,
				Message:  e.Message,
			})
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(msgs, "\n  "))
	}

	ctx.Observer.Printf("[Validation] Validation passed")
	return nil
}

// validate runs all validation checks and returns any errors or warnings.
func validate(ctx *Context) []ValidationError {
	var errs []ValidationError
	cfg := ctx.Config

	if err := cfg.Validate(); err != nil {
		errs = append(errs, ValidationError{
			Field:    "Config",
			Message:  err.Error(),
			Severity: "error",
		})
	}

	// --- Roles ---

	populated := make(map[string]bool)
	hasMon := false
	for _, t := range cfg.Targets {
		for _, r := range t.Roles {
			role := cluster.Role(r)
			if role.Type() == "mon" {
				hasMon = true
			}
			group, ok := cluster.GroupForRole(role)
			if !ok {
				errs = append(errs, ValidationError{
					Field:    fmt.Sprintf("Targets[%s].Roles", t.Hostname),
					Message:  fmt.Sprintf("role %s does not map to an inventory group", r),
					Severity: "warning",
				})
				continue
			}
			populated[group] = true
		}
	}
	if !hasMon {
		errs = append(errs, ValidationError{
			Field:    "Targets",
			Message:  "at least one mon role is required to drive the playbook",
			Severity: "error",
		})
	}

	// --- Playbook ---

	for i, play := range cfg.CephAnsible.Playbook {
		if _, generated := cluster.PrefixForGroup(play.Hosts); generated && !populated[play.Hosts] {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("CephAnsible.Playbook[%d]", i),
				Message:  fmt.Sprintf("play targets group %s which has no hosts", play.Hosts),
				Severity: "warning",
			})
		}
	}

	// --- Vars ---

	overridden := make([]string, 0, 3)
	for _, key := range []string{hostvars.KeyDevices, hostvars.KeyMonitorInterface, hostvars.KeyPublicNetwork} {
		if _, ok := cfg.CephAnsible.Vars[key]; ok {
			overridden = append(overridden, key)
		}
	}
	sort.Strings(overridden)
	for _, key := range overridden {
		errs = append(errs, ValidationError{
			Field:    "CephAnsible.Vars." + key,
			Message:  fmt.Sprintf("%s is set globally and suppresses the per-host value", key),
			Severity: "warning",
		})
	}

	// --- Timing ---

	if ctx.Timeouts != nil {
		if ctx.Timeouts.Playbook <= 0 {
			errs = append(errs, ValidationError{
				Field:    "Timeouts.Playbook",
				Message:  "playbook timeout must be positive",
				Severity: "error",
			})
		}
		if ctx.Timeouts.HealthAttempts <= 0 {
			errs = append(errs, ValidationError{
				Field:    "Timeouts.HealthAttempts",
				Message:  "at least one health attempt is required",
				Severity: "error",
			})
		}
	}

	return errs
}
