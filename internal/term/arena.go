package term

import (
	"github.com/kartikbazzad/queryhost/internal/backtrace"
	"github.com/kartikbazzad/queryhost/internal/datum"
)

// Arena owns every term for one query. Terms are allocated append-only
// into a backing slice; a Handle is a stable index into that slice and
// survives growth. Release frees all term storage in a single step —
// there is no per-term destructor list, the same "buffer list plus one
// Release call" shape this core's memory-arena ancestor uses for raw
// byte buffers.
type Arena struct {
	terms         []Term
	globalOptargs []Optarg
	startTime     datum.Value
	hasStartTime  bool
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewCall appends a Call term with empty Args/Optargs.
func (a *Arena) NewCall(op Opcode, bt backtrace.ID) Handle {
	a.terms = append(a.terms, Term{Kind: KindCall, Opcode: op, BacktraceID: bt})
	return Handle(len(a.terms) - 1)
}

// NewDatum appends a Datum term.
func (a *Arena) NewDatum(v datum.Value, bt backtrace.ID) Handle {
	a.terms = append(a.terms, Term{Kind: KindDatum, Datum: v, BacktraceID: bt})
	return Handle(len(a.terms) - 1)
}

// NewRef appends a Reference term pointing at target. References are
// never nested: if target is itself a Reference, the new node points
// straight through to target's own (non-Reference) destination.
func (a *Arena) NewRef(target Handle) Handle {
	dest := target
	bt := a.terms[target].BacktraceID
	if a.terms[target].Kind == KindReference {
		dest = a.terms[target].Ref
	}
	a.terms = append(a.terms, Term{Kind: KindReference, Opcode: RefOpcode, Ref: dest, BacktraceID: bt})
	return Handle(len(a.terms) - 1)
}

// PushArg appends child to parent's positional args. parent must be a
// Call term; pushing onto a Datum or Reference is a programming error.
func (a *Arena) PushArg(parent Handle, child Handle) {
	checkIsCall(&a.terms[parent], "PushArg")
	a.terms[parent].Args = append(a.terms[parent].Args, child)
}

// PushOptarg appends child under name to parent's named children.
// parent must be a Call term. The child term's OptargName is set to
// name, mirroring the source's "the child carries its own optarg name".
func (a *Arena) PushOptarg(parent Handle, name string, child Handle) {
	checkIsCall(&a.terms[parent], "PushOptarg")
	a.terms[child].OptargName = name
	a.terms[parent].Optargs = append(a.terms[parent].Optargs, Optarg{Name: name, Child: child})
}

// Now returns the arena's cached "query start time" datum, computing it
// on first call. Every subsequent call within the same arena's lifetime
// returns the identical value, so every NOW occurrence in one query
// evaluates to the same instant.
func (a *Arena) Now() datum.Value {
	if !a.hasStartTime {
		a.startTime = datum.Now()
		a.hasStartTime = true
	}
	return a.startTime
}

// Term returns a mutable pointer to the term at h.
func (a *Arena) Term(h Handle) *Term { return &a.terms[h] }

// RewriteToDatum replaces the term at h in place with a Datum term,
// discarding any args/optargs it had. Used for the NOW folding rule:
// the handle's identity is preserved so references into it (there are
// none before this rewrite, since NOW takes no children, but the
// pattern generalizes) keep working.
func (a *Arena) RewriteToDatum(h Handle, v datum.Value) {
	bt := a.terms[h].BacktraceID
	optargName := a.terms[h].OptargName
	a.terms[h] = Term{Kind: KindDatum, Datum: v, BacktraceID: bt, OptargName: optargName}
}

// Resolve follows a single Reference hop, returning h unchanged if it
// is not a Reference. Because references are never nested, one hop
// always reaches a non-Reference term.
func (a *Arena) Resolve(h Handle) Handle {
	if a.terms[h].Kind == KindReference {
		return a.terms[h].Ref
	}
	return h
}

// AppendGlobalOptarg appends a wrapped global option to the arena's
// global-optarg list, in insertion order.
func (a *Arena) AppendGlobalOptarg(name string, child Handle) {
	a.globalOptargs = append(a.globalOptargs, Optarg{Name: name, Child: child})
}

// GlobalOptargs returns the arena's global-optarg list in insertion order.
func (a *Arena) GlobalOptargs() []Optarg { return a.globalOptargs }

// Len reports how many terms the arena currently holds.
func (a *Arena) Len() int { return len(a.terms) }

// Release frees all term storage in a single step. The arena is not
// usable afterward.
func (a *Arena) Release() {
	a.terms = nil
	a.globalOptargs = nil
}

// checkIsCall enforces that only Call terms accept children. This is a
// cheap, always-on check (unlike the per-operation thread-affinity
// assertion in queryid.Registry, which is gated behind a build tag
// because it runs far more often): pushing a child onto a Datum or
// Reference term is a programming error and must fail fatally in every
// build.
func checkIsCall(t *Term, op string) {
	if t.Kind != KindCall {
		panic("term invariant: " + op + ": parent is not a call term")
	}
}
