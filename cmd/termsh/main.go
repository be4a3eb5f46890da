// Command termsh is an interactive shell for feeding textual query
// envelopes through the ingestion core one line at a time and
// inspecting the term tree each one produces. It is adapted from the
// storage engine's own docdbsh REPL loop, with peterh/liner swapped in
// for line editing and history — the storage engine's shell read lines
// through a bare bufio.Reader, but a REPL that is going to be typed
// into interactively benefits from liner's history and line editing.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kartikbazzad/queryhost/internal/backtrace"
	"github.com/kartikbazzad/queryhost/internal/dberrors"
	"github.com/kartikbazzad/queryhost/internal/metrics"
	"github.com/kartikbazzad/queryhost/internal/queryid"
	"github.com/kartikbazzad/queryhost/internal/queryparams"
	"github.com/kartikbazzad/queryhost/internal/rawdoc"
	"github.com/kartikbazzad/queryhost/internal/term"
)

const prompt = "termsh> "

func main() {
	historyPath := flag.String("history", "", "path to a line-history file (default: no persistent history)")
	flag.Parse()

	fmt.Println("termsh - query ingestion core shell")
	fmt.Println("Type a textual query envelope, e.g. [1,[2,[[1,1],[1,2]]]], or .help.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if *historyPath != "" {
		if f, err := os.Open(*historyPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	ids := queryid.New()
	registry := backtrace.NewMemRegistry()
	ingestionMetrics := metrics.NewIngestion(prometheus.NewRegistry())
	fmt.Printf("connection id: %s\n", ids.ConnectionID())

	for {
		text, err := line.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				break
			}
			fmt.Fprintf(os.Stderr, "termsh: %v\n", err)
			break
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)

		if text == ".help" {
			fmt.Println("Enter a [kind, term, global_optargs?] envelope. .quit to exit.")
			continue
		}
		if text == ".quit" || text == ".exit" {
			break
		}

		runEnvelope(text, registry, ids, ingestionMetrics)
	}

	if *historyPath != "" {
		if f, err := os.Create(*historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
}

var classifier = dberrors.NewClassifier()

func runEnvelope(text string, registry backtrace.Registry, ids *queryid.Registry, m *metrics.Ingestion) {
	doc, err := rawdoc.Decode([]byte(text))
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode error: %v\n", err)
		return
	}

	arena := term.NewArena()
	params, err := queryparams.Parse(doc, arena, registry, ids)
	if err != nil {
		m.RecordParseError(classifier.Classify(err))
		fmt.Fprintf(os.Stderr, "parse error: %v\n", err)
		arena.Release()
		return
	}

	m.RecordParse(kindName(params.Kind))
	m.RecordTermCount(arena.Len())
	m.SetOutstanding(ids.ConnectionID(), ids.Len())

	fmt.Printf("kind=%d noreply=%v profile=%v query_id=%d terms=%d\n",
		params.Kind, params.NoReply, params.Profile, params.QueryID, arena.Len())
	if params.HasRoot {
		printTerm(arena, params.Root, 0)
	}
	arena.Release()
}

func kindName(k queryparams.Kind) string {
	switch k {
	case queryparams.KindStart:
		return "start"
	case queryparams.KindContinue:
		return "continue"
	case queryparams.KindStop:
		return "stop"
	case queryparams.KindNoreplyWait:
		return "noreply_wait"
	case queryparams.KindServerInfo:
		return "server_info"
	default:
		return "unknown"
	}
}

func printTerm(a *term.Arena, h term.Handle, depth int) {
	t := a.Term(a.Resolve(h))
	indent := strings.Repeat("  ", depth)
	switch t.Kind {
	case term.KindDatum:
		fmt.Printf("%sdatum(tag=%d)\n", indent, t.Datum.Tag())
	case term.KindCall:
		fmt.Printf("%scall(op=%d)\n", indent, t.Opcode)
		for _, arg := range t.Args {
			printTerm(a, arg, depth+1)
		}
		for _, opt := range t.Optargs {
			fmt.Printf("%s  %s:\n", indent, opt.Name)
			printTerm(a, opt.Child, depth+2)
		}
	case term.KindReference:
		fmt.Printf("%sref(-> %d)\n", indent, t.Ref)
	}
}
