// Package retry re-runs operations that fail transiently.
//
// [Do] retries with exponential backoff by default. [WithFixedInterval]
// switches to a constant sleep, which is how cluster health is polled, and
// [WithClock] lets tests drive the sleeps with a fake clock.
package retry
