// Package minidriver builds the small canonical sub-trees the parser
// needs to inject during query-envelope parsing: wrapping a global
// option as a zero-argument function, and building a literal db(name)
// call. It is a narrow stand-in for the host's real mini-driver, which
// is specified only by the shapes it must produce.
package minidriver

import (
	"github.com/kartikbazzad/queryhost/internal/backtrace"
	"github.com/kartikbazzad/queryhost/internal/datum"
	"github.com/kartikbazzad/queryhost/internal/term"
)

// WrapAsZeroArgFunction builds fun(expr(child)): a function term with
// no parameters whose body is child. This is the canonical wrapping
// every global optarg goes through before being appended to the
// arena's global-optarg list, so downstream evaluation always sees a
// function it can call rather than a bare expression.
func WrapAsZeroArgFunction(a *term.Arena, child term.Handle) term.Handle {
	params := a.NewCall(term.OpMakeArray, backtrace.Empty) // zero parameter ids
	fn := a.NewCall(term.OpFunc, backtrace.Empty)
	a.PushArg(fn, params)
	a.PushArg(fn, child)
	return fn
}

// BuildDB builds a literal db(name) call, used to synthesize the
// default `db("test")` global optarg when the client's query omits one.
func BuildDB(a *term.Arena, name string) term.Handle {
	lit := a.NewDatum(datum.String(name), backtrace.Empty)
	call := a.NewCall(term.OpDB, backtrace.Empty)
	a.PushArg(call, lit)
	return call
}
