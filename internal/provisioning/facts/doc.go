// Package facts gathers host facts (primary interface, subnet and package
// type) on every machine before the inventory is built.
package facts
