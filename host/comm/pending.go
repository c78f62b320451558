package comm

import "sync/atomic"

// PendingFlag records that the sensor raised its interrupt line.
//
// Signal is the only method meant to run in interrupt context. Register the
// method value of the owning instance (flag.Signal) as the handler so every
// sensor keeps its own flag.
type PendingFlag struct {
	v atomic.Bool
}

// Signal marks a block as pending
func (f *PendingFlag) Signal() {
	f.v.Store(true)
}

// Take clears the flag and reports whether it was set
func (f *PendingFlag) Take() bool {
	return f.v.Swap(false)
}

// Pending reports whether the flag is set
func (f *PendingFlag) Pending() bool {
	return f.v.Load()
}

// Clear resets the flag
func (f *PendingFlag) Clear() {
	f.v.Store(false)
}
