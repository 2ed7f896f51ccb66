// Package hcloud looks up test machines in Hetzner Cloud so targets can be
// configured by server name instead of address.
//
// Lookups retry on rate limiting with exponential backoff. Any other API
// error is returned immediately.
package hcloud
