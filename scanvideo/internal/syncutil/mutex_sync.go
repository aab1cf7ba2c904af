//go:build !deadlock

// Package syncutil provides the mutexes used by the engines. Build with
// -tags=deadlock to run them under the deadlock detector.
package syncutil

import "sync"

// DeadlockEnabled reports whether the deadlock detector is compiled in.
const DeadlockEnabled = false

// A Mutex is a mutual exclusion lock.
type Mutex struct {
	sync.Mutex
}
