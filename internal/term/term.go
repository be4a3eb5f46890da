// Package term implements the arena-backed term graph: the internal
// expression tree a parsed query is translated into. A Term is one of
// Datum, Call, or Reference; an Arena owns every term for one query and
// releases them as a unit.
package term

import (
	"github.com/kartikbazzad/queryhost/internal/backtrace"
	"github.com/kartikbazzad/queryhost/internal/datum"
)

// Opcode identifies a Call term's operation. Reference is not a real
// opcode: RefOpcode is a sentinel distinct from every value a Call can
// carry.
type Opcode int32

// RefOpcode is the sentinel opcode used internally to mark a Reference
// term; it is never a value a parser assigns to a Call.
const RefOpcode Opcode = -1

// A minimal, self-consistent slice of the real opcode enumeration,
// enough to exercise every parsing rule this core implements. A host
// wiring in the full ReQL-style opcode table only needs to add
// constants here; nothing else in this package assumes a closed set.
const (
	OpDatum      Opcode = 1
	OpMakeArray  Opcode = 2
	OpMakeObject Opcode = 3
	OpFunc       Opcode = 4
	OpDB         Opcode = 14
	OpNow        Opcode = 103
)

// Kind identifies which variant a Term holds.
type Kind int

const (
	KindDatum Kind = iota
	KindCall
	KindReference
)

// Optarg is one named child of a Call term.
type Optarg struct {
	Name  string
	Child Handle
}

// Handle is a stable reference to a term within one Arena. Handles
// remain valid for the arena's lifetime: the arena is append-only, so
// growth never invalidates an earlier handle.
type Handle int

// Term is one node of the expression tree.
type Term struct {
	Kind Kind

	// Valid when Kind == KindDatum.
	Datum datum.Value

	// Valid when Kind == KindCall.
	Opcode  Opcode
	Args    []Handle
	Optargs []Optarg

	// Valid when Kind == KindReference: the ultimate (non-Reference)
	// target in the same arena.
	Ref Handle

	// BacktraceID is set on every term, per spec; Empty for
	// synthetically constructed terms (e.g. mini-driver wrappers).
	BacktraceID backtrace.ID

	// OptargName is set when this term participates as a named child
	// of some call; empty otherwise.
	OptargName string
}

// IsCall reports whether t can carry args/optargs children.
func (t *Term) IsCall() bool { return t.Kind == KindCall }
