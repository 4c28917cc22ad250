//go:build !linux

package rt

// LockMemory is a no-op on platforms without mlockall.
func LockMemory() error { return nil }

// RaisePriority is a no-op on platforms without Unix scheduling priority.
func RaisePriority() error { return nil }
