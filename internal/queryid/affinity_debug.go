//go:build debug

package queryid

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID extracts the calling goroutine's id by parsing the
// header line of its own stack trace. This is exactly the kind of
// per-call cost the debug/release split exists to keep out of release
// builds: the thread-affinity check below runs on every Allocate and
// Release, the registry's hottest path.
func goroutineID() int64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	buf = buf[:n]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if idx := bytes.IndexByte(buf, ' '); idx >= 0 {
		buf = buf[:idx]
	}
	id, _ := strconv.ParseInt(string(buf), 10, 64)
	return id
}

func (r *Registry) bindOwner() {
	r.ownerGoroutine = goroutineID()
}

// checkOwner panics if the registry is accessed from a goroutine other
// than the one that created it, the debug-build form of the source's
// "this object belongs to one connection's home thread" contract.
func (r *Registry) checkOwner() {
	owner, ok := r.ownerGoroutine.(int64)
	if !ok {
		return
	}
	if owner != goroutineID() {
		panic("queryid: registry accessed from a goroutine other than its owner")
	}
}
