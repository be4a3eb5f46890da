// Package queryparams implements the top-level query envelope: the
// [kind, root_term, global_optargs?] array every query arrives as,
// before any term inside it is parsed. It is adapted from the storage
// engine's own connection-level request wrapper, the layer that used
// to pull a frame off the wire and hand it to the query engine.
package queryparams

import (
	"github.com/kartikbazzad/queryhost/internal/backtrace"
	"github.com/kartikbazzad/queryhost/internal/dberrors"
	"github.com/kartikbazzad/queryhost/internal/queryid"
	"github.com/kartikbazzad/queryhost/internal/rawdoc"
	"github.com/kartikbazzad/queryhost/internal/term"
	"github.com/kartikbazzad/queryhost/internal/termparser"
)

// Kind identifies the top-level query type. These five values are
// wire-fixed, unlike term opcodes: a client and server must agree on
// them exactly for the connection protocol to work at all.
type Kind int32

const (
	KindStart       Kind = 1
	KindContinue    Kind = 2
	KindStop        Kind = 3
	KindNoreplyWait Kind = 4
	KindServerInfo  Kind = 5
)

// Params is one parsed query envelope: its kind, its parsed root term
// (valid only when HasRoot is set, i.e. the envelope carried a term),
// and the flags pulled out of its global
// options before the rest of the term tree was parsed.
type Params struct {
	Kind    Kind
	Root    term.Handle
	HasRoot bool
	QueryID queryid.ID
	NoReply bool
	Profile bool
}

// Parse decodes a textual query envelope: a top-level array of 1 to 3
// elements — [kind], [kind, term], or [kind, term, global_optargs] —
// per the wire's query_params_t contract. arena receives the parsed
// root term (if any); registry allocates a fresh id for every parsed
// envelope, of every kind, releasing it immediately unless the query is
// noreply — a noreply query's id stays outstanding until the query
// completes and something releases it, so a later NOREPLY_WAIT can
// block on it.
func Parse(env rawdoc.Value, arena *term.Arena, bt backtrace.Registry, ids *queryid.Registry) (Params, error) {
	if !env.IsArray() {
		return Params{}, dberrors.NewClientError("expected a query envelope array, but found %s", env.TypeName())
	}
	size := len(env.Arr)
	if size < 1 || size > 3 {
		return Params{}, dberrors.NewClientError("expected a query envelope of 1 to 3 elements, but found %d", size)
	}

	kindElem := env.Arr[0]
	if !kindElem.IsNumber() {
		return Params{}, dberrors.NewClientError("expected a query kind as a number, but found %s", kindElem.TypeName())
	}
	kind := Kind(int32(kindElem.Num))

	p := Params{Kind: kind}

	var globalOptargs rawdoc.Value
	hasGlobalOptargs := false
	if size >= 3 {
		if !env.Arr[2].IsObject() {
			return Params{}, dberrors.NewClientError("expected a global optargs object, but found %s", env.Arr[2].TypeName())
		}
		globalOptargs = env.Arr[2]
		hasGlobalOptargs = true
	}

	if hasGlobalOptargs {
		for _, m := range globalOptargs.Obj {
			switch m.Key {
			case "noreply":
				p.NoReply = staticOptargAsBool(m.Value)
			case "profile":
				p.Profile = staticOptargAsBool(m.Value)
			}
		}
	}

	if size >= 2 {
		parser := termparser.NewTextual(arena, bt, nil)
		root, err := parser.ParseTerm(env.Arr[1], backtrace.Empty)
		if err != nil {
			return Params{}, err
		}
		p.Root = root
		p.HasRoot = true

		if hasGlobalOptargs {
			if err := parser.ParseGlobalOptions(globalOptargs); err != nil {
				return Params{}, err
			}
		}
	}

	// Every parsed envelope allocates an id, not just START: noreply-wait
	// must order against any preceding noreply query on the connection,
	// so the allocation sequence has to stay unbroken across all kinds —
	// matching query_params_t's member-init-list allocation in query.cc,
	// which runs for every constructed query regardless of type.
	id := ids.Allocate()
	if !p.NoReply {
		// A query that expects a reply is released the instant it is
		// allocated: nothing will wait on it, so the allocation only
		// keeps the id sequence unbroken and p.QueryID stays 0.
		ids.Release(id)
	} else {
		// A noreply query's id stays outstanding until the query
		// completes, so a later NOREPLY_WAIT can block on it.
		p.QueryID = id
	}

	return p, nil
}

// staticOptargAsBool extracts a boolean global optarg from its wire
// shape: a term in datum form, the 2-element array [DATUM, <bool>].
// Any other shape — including a bare JSON boolean — resolves to false,
// matching query.cc's static_optarg_as_bool, which only recognizes an
// array of size 2 whose first element decodes to the DATUM opcode.
func staticOptargAsBool(v rawdoc.Value) bool {
	if !v.IsArray() || len(v.Arr) != 2 {
		return false
	}
	opcode := v.Arr[0]
	if !opcode.IsNumber() || term.Opcode(int32(opcode.Num)) != term.OpDatum {
		return false
	}
	datum := v.Arr[1]
	return datum.Kind == rawdoc.KindBool && datum.Bool
}
