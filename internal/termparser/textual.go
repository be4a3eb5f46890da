// Package termparser translates a decoded query envelope — either the
// textual (JSON-like) document form or the compact binary form — into
// terms inside a term.Arena. Both entry points write into the same
// arena; they are kept as separate top-level functions per term rather
// than unified through a reflective layer, matching the source
// parser's own "two parse paths, one arena" shape.
package termparser

import (
	"github.com/kartikbazzad/queryhost/internal/backtrace"
	"github.com/kartikbazzad/queryhost/internal/datum"
	"github.com/kartikbazzad/queryhost/internal/dberrors"
	"github.com/kartikbazzad/queryhost/internal/logger"
	"github.com/kartikbazzad/queryhost/internal/minidriver"
	"github.com/kartikbazzad/queryhost/internal/rawdoc"
	"github.com/kartikbazzad/queryhost/internal/term"
)

// Textual parses the textual (JSON-like) query encoding into a
// term.Arena. It carries no state beyond its target arena and optional
// collaborators, so one Textual can be reused across every term of a
// single query envelope (root term, then each global optarg).
type Textual struct {
	Arena    *term.Arena
	Registry backtrace.Registry // optional: may be nil
	Log      *logger.Logger     // optional: may be nil
	Limits   datum.Limits
}

// NewTextual builds a Textual parser targeting arena. registry and log
// may both be nil.
func NewTextual(arena *term.Arena, registry backtrace.Registry, log *logger.Logger) *Textual {
	return &Textual{
		Arena:    arena,
		Registry: registry,
		Log:      log,
		Limits:   datum.UnlimitedLimits(),
	}
}

func (p *Textual) debugf(format string, args ...interface{}) {
	if p.Log != nil {
		p.Log.Debug(format, args...)
	}
}

func (p *Textual) newFrame(bt backtrace.ID, key backtrace.Key) backtrace.ID {
	if p.Registry == nil {
		return backtrace.Empty
	}
	return p.Registry.NewFrame(bt, key)
}

// ParseTerm parses one term, recognizing the array/object/primitive
// forms of spec §4.2, and returns its handle in p.Arena.
func (p *Textual) ParseTerm(v rawdoc.Value, bt backtrace.ID) (term.Handle, error) {
	switch v.Kind {
	case rawdoc.KindArray:
		return p.parseArrayForm(v, bt)
	case rawdoc.KindObject:
		p.debugf("converting object to MAKE_OBJECT: %d members", len(v.Obj))
		return p.parseObjectForm(v, bt)
	default:
		val, err := datum.FromRawDoc(v, p.Limits, datum.SchemaLatest)
		if err != nil {
			return 0, dberrors.NewParseError(bt, "%v", err)
		}
		return p.Arena.NewDatum(val, bt), nil
	}
}

func (p *Textual) parseArrayForm(v rawdoc.Value, bt backtrace.ID) (term.Handle, error) {
	size := len(v.Arr)
	if size < 1 || size > 3 {
		return 0, dberrors.NewParseError(bt, "expected an array of 1, 2, or 3 elements, but found %d", size)
	}

	elem0 := v.Arr[0]
	if !elem0.IsNumber() {
		return 0, dberrors.NewParseError(bt, "expected a term opcode as a number, but found %s", elem0.TypeName())
	}
	opcode := term.Opcode(int32(elem0.Num))

	if opcode == term.OpDatum {
		if size != 2 {
			return 0, dberrors.NewParseError(bt, "expected 2 items in array for DATUM, but found %d", size)
		}
		val, err := datum.FromRawDoc(v.Arr[1], p.Limits, datum.SchemaLatest)
		if err != nil {
			return 0, dberrors.NewParseError(bt, "%v", err)
		}
		return p.Arena.NewDatum(val, bt), nil
	}

	h := p.Arena.NewCall(opcode, bt)

	if size >= 2 {
		if !v.Arr[1].IsArray() {
			return 0, dberrors.NewParseError(bt, "expected an array of args, but found %s", v.Arr[1].TypeName())
		}
		if err := p.parseArgs(h, v.Arr[1], bt); err != nil {
			return 0, err
		}
	}
	if size >= 3 {
		if !v.Arr[2].IsObject() {
			return 0, dberrors.NewParseError(bt, "expected an object of optargs, but found %s", v.Arr[2].TypeName())
		}
		if err := p.parseOptargs(h, v.Arr[2], bt); err != nil {
			return 0, err
		}
	}

	// NOW rewrite: a no-arg, no-optarg NOW call folds into the arena's
	// cached start-time datum, so every NOW in one query agrees.
	t := p.Arena.Term(h)
	if t.Opcode == term.OpNow && len(t.Args) == 0 && len(t.Optargs) == 0 {
		p.debugf("folding NOW into cached start time")
		p.Arena.RewriteToDatum(h, p.Arena.Now())
	}

	return h, nil
}

func (p *Textual) parseObjectForm(v rawdoc.Value, bt backtrace.ID) (term.Handle, error) {
	h := p.Arena.NewCall(term.OpMakeObject, bt)
	if err := p.parseOptargs(h, v, bt); err != nil {
		return 0, err
	}
	return h, nil
}

func (p *Textual) parseArgs(parent term.Handle, args rawdoc.Value, bt backtrace.ID) error {
	for i, elem := range args.Arr {
		childBt := p.newFrame(bt, backtrace.IndexKey(i))
		child, err := p.ParseTerm(elem, childBt)
		if err != nil {
			return err
		}
		p.Arena.PushArg(parent, child)
	}
	return nil
}

func (p *Textual) parseOptargs(parent term.Handle, optargs rawdoc.Value, bt backtrace.ID) error {
	for _, m := range optargs.Obj {
		childBt := p.newFrame(bt, backtrace.NameKey(m.Key))
		child, err := p.ParseTerm(m.Value, childBt)
		if err != nil {
			return err
		}
		p.Arena.PushOptarg(parent, m.Key, child)
	}
	return nil
}

// ParseGlobalOptions parses the query envelope's global-options object
// (spec §4.2): each value is parsed as a term, wrapped as a zero-arg
// function via the mini-driver, and appended to the arena's
// global-optarg list under its key, in insertion order. If no "db" key
// was present, a synthetic db("test") wrapper is appended last.
func (p *Textual) ParseGlobalOptions(optargs rawdoc.Value) error {
	hasDB := false
	for _, m := range optargs.Obj {
		child, err := p.ParseTerm(m.Value, backtrace.Empty)
		if err != nil {
			return err
		}
		wrapped := minidriver.WrapAsZeroArgFunction(p.Arena, child)
		p.Arena.AppendGlobalOptarg(m.Key, wrapped)
		if m.Key == "db" {
			hasDB = true
		}
	}

	if !hasDB {
		p.debugf("injecting default db(\"test\") global optarg")
		dbCall := minidriver.BuildDB(p.Arena, "test")
		wrapped := minidriver.WrapAsZeroArgFunction(p.Arena, dbCall)
		p.Arena.AppendGlobalOptarg("db", wrapped)
	}

	return nil
}
