package topology

import (
	"errors"
	"fmt"
)

// FailureMarker is printed by ansible when no host is left to run on. The
// exit status of ansible-playbook is not reliable in that case.
const FailureMarker = "all hosts have already failed"

// ErrPlaybookTimeout is returned when ansible-playbook exceeds its deadline.
var ErrPlaybookTimeout = errors.New("ansible-playbook timed out")

// OrchestrationError reports a playbook run in which every host failed.
type OrchestrationError struct {
	Host string
}

func (e *OrchestrationError) Error() string {
	return fmt.Sprintf("ceph-ansible failed on all hosts (installer %s)", e.Host)
}

// ExecutionError reports ansible-playbook exiting non-zero without the
// total failure marker.
type ExecutionError struct {
	Host   string
	Status int
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("ansible-playbook on %s exited with status %d", e.Host, e.Status)
}
