package termparser

import (
	"testing"

	"github.com/kartikbazzad/queryhost/internal/backtrace"
	"github.com/kartikbazzad/queryhost/internal/datum"
	"github.com/kartikbazzad/queryhost/internal/rawdoc"
	"github.com/kartikbazzad/queryhost/internal/term"
)

func mustDecode(t *testing.T, src string) rawdoc.Value {
	t.Helper()
	v, err := rawdoc.Decode([]byte(src))
	if err != nil {
		t.Fatalf("rawdoc.Decode(%q): %v", src, err)
	}
	return v
}

func TestTextual_PrimitiveForm(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	h, err := p.ParseTerm(mustDecode(t, `"hello"`), backtrace.Empty)
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	got := a.Term(h)
	if got.Kind != term.KindDatum || got.Datum.AsString() != "hello" {
		t.Fatalf("ParseTerm(primitive) = %+v, want a string datum \"hello\"", got)
	}
}

func TestTextual_ObjectFormBecomesMakeObject(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	h, err := p.ParseTerm(mustDecode(t, `{"a":1,"b":2}`), backtrace.Empty)
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	got := a.Term(h)
	if got.Kind != term.KindCall || got.Opcode != term.OpMakeObject {
		t.Fatalf("ParseTerm(object) = %+v, want a MAKE_OBJECT call", got)
	}
	if len(got.Optargs) != 2 || got.Optargs[0].Name != "a" || got.Optargs[1].Name != "b" {
		t.Fatalf("Optargs = %v, want [a b] in source order", got.Optargs)
	}
}

func TestTextual_ArrayFormDatumSizeCheck(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	_, err := p.ParseTerm(mustDecode(t, `[1, 5, "extra"]`), backtrace.Empty)
	if err == nil {
		t.Fatal("DATUM array with 3 elements should be rejected")
	}
}

func TestTextual_ArrayFormCallWithArgs(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	// opcode 14 is OpDB: [14, ["test"]]
	h, err := p.ParseTerm(mustDecode(t, `[14, ["test"]]`), backtrace.Empty)
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	got := a.Term(h)
	if got.Kind != term.KindCall || got.Opcode != term.OpDB {
		t.Fatalf("ParseTerm = %+v, want an OpDB call", got)
	}
	if len(got.Args) != 1 {
		t.Fatalf("Args = %v, want one arg", got.Args)
	}
	arg := a.Term(got.Args[0])
	if arg.Datum.AsString() != "test" {
		t.Fatalf("arg datum = %q, want \"test\"", arg.Datum.AsString())
	}
}

func TestTextual_TermArraySizeOutOfRange(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	_, err := p.ParseTerm(mustDecode(t, `[]`), backtrace.Empty)
	if err == nil {
		t.Fatal("empty array term should be rejected")
	}

	_, err = p.ParseTerm(mustDecode(t, `[1,2,3,4]`), backtrace.Empty)
	if err == nil {
		t.Fatal("4-element array term should be rejected")
	}
}

func TestTextual_NowRewriteFoldsIntoSharedDatum(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	h1, err := p.ParseTerm(mustDecode(t, `[103]`), backtrace.Empty)
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	h2, err := p.ParseTerm(mustDecode(t, `[103]`), backtrace.Empty)
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}

	t1 := a.Term(h1)
	t2 := a.Term(h2)
	if t1.Kind != term.KindDatum || t2.Kind != term.KindDatum {
		t.Fatalf("NOW should fold into a datum term: got %v, %v", t1.Kind, t2.Kind)
	}
	if !datum.Equal(t1.Datum, t2.Datum) {
		t.Fatal("two NOW calls in the same arena produced different times")
	}
}

func TestTextual_NowWithArgsIsNotFolded(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	h, err := p.ParseTerm(mustDecode(t, `[103, [1]]`), backtrace.Empty)
	if err != nil {
		t.Fatalf("ParseTerm: %v", err)
	}
	if got := a.Term(h); got.Kind != term.KindCall {
		t.Fatalf("NOW with args should stay a call, got Kind=%v", got.Kind)
	}
}

func TestTextual_ParseGlobalOptionsInjectsDefaultDB(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	if err := p.ParseGlobalOptions(mustDecode(t, `{}`)); err != nil {
		t.Fatalf("ParseGlobalOptions: %v", err)
	}

	opts := a.GlobalOptargs()
	if len(opts) != 1 || opts[0].Name != "db" {
		t.Fatalf("GlobalOptargs() = %v, want a single synthetic db entry", opts)
	}
}

func TestTextual_ParseGlobalOptionsHonorsExplicitDB(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	if err := p.ParseGlobalOptions(mustDecode(t, `{"db":[14,["prod"]]}`)); err != nil {
		t.Fatalf("ParseGlobalOptions: %v", err)
	}

	opts := a.GlobalOptargs()
	if len(opts) != 1 || opts[0].Name != "db" {
		t.Fatalf("GlobalOptargs() = %v, want a single db entry", opts)
	}

	// The wrapped value must be a zero-arg function, not the bare db() call.
	fn := a.Term(opts[0].Child)
	if fn.Opcode != term.OpFunc {
		t.Fatalf("global optarg not wrapped as a function: Opcode=%v", fn.Opcode)
	}
}

func TestTextual_ParseGlobalOptionsPreservesOrder(t *testing.T) {
	a := term.NewArena()
	p := NewTextual(a, nil, nil)

	if err := p.ParseGlobalOptions(mustDecode(t, `{"profile":true,"db":[14,["test"]]}`)); err != nil {
		t.Fatalf("ParseGlobalOptions: %v", err)
	}

	opts := a.GlobalOptargs()
	if len(opts) != 2 || opts[0].Name != "profile" || opts[1].Name != "db" {
		t.Fatalf("GlobalOptargs() = %v, want [profile db] — db was explicit, so no synthetic entry should be appended", opts)
	}
}
