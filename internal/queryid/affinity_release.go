//go:build !debug

package queryid

// bindOwner and checkOwner are no-ops in release builds: the
// thread-affinity assertion is a debug-only aid, never a
// release-build safety net.
func (r *Registry) bindOwner()  {}
func (r *Registry) checkOwner() {}
