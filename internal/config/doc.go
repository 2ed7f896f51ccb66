// Package config defines the task configuration consumed by every cephrig
// subsystem.
//
// A [Config] is read once from YAML at the start of a run, defaulted,
// validated and then passed by pointer to the components that need it. No
// component mutates it afterwards. Timeouts that operators tune per
// environment come from CEPHRIG_* environment variables via [LoadTimeouts].
package config
