// Package rt tunes the process for the fixed-interval polling loop:
// memory locking and scheduler priority on Linux, no-ops elsewhere. Both
// are best-effort; the loop is correct without them, just more prone to
// missed ticks under load.
package rt
