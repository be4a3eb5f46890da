// Package backtrace defines the narrow interface this core expects from
// the host's backtrace registry, plus an in-memory stand-in sufficient
// for tests and the termsh demo. The registry itself — mapping frames
// back to source positions for error reporting — is an external
// collaborator, not something this core implements for production use.
package backtrace

// ID is an opaque handle into a backtrace registry.
type ID int64

// Empty is the sentinel "no backtrace" id, used for client-level errors
// and synthetic terms that have no source position.
const Empty ID = 0

// Key identifies which child of a parent term a new frame descends
// into: a positional index (array args) or a name (object optargs).
type Key struct {
	IsIndex bool
	Index   int
	Name    string
}

// IndexKey builds a positional Key for the i-th element of an args array.
func IndexKey(i int) Key { return Key{IsIndex: true, Index: i} }

// NameKey builds a named Key for an optarg.
func NameKey(name string) Key { return Key{Name: name} }

// Registry creates child frames as parsing descends into a term's
// children, each keyed by the child's position or name.
type Registry interface {
	NewFrame(parent ID, key Key) ID
}

// MemRegistry is an in-memory Registry that assigns every NewFrame call
// a fresh monotonically increasing id (a repeated (parent, key) pair
// gets a new id each time) and remembers the frame so Path can
// reconstruct it.
type MemRegistry struct {
	frames []frame
}

type frame struct {
	parent ID
	key    Key
}

// NewMemRegistry creates an empty in-memory registry.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{frames: []frame{{parent: Empty, key: Key{}}}}
}

// NewFrame implements Registry.
func (r *MemRegistry) NewFrame(parent ID, key Key) ID {
	r.frames = append(r.frames, frame{parent: parent, key: key})
	return ID(len(r.frames) - 1)
}

// Path reconstructs the chain of keys from the root to id, for
// diagnostics (e.g. "args[0].optargs[\"filter\"]").
func (r *MemRegistry) Path(id ID) []Key {
	var keys []Key
	for id != Empty && int(id) < len(r.frames) {
		f := r.frames[id]
		keys = append([]Key{f.key}, keys...)
		id = f.parent
	}
	return keys
}
