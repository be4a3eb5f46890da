package termparser

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/kartikbazzad/queryhost/internal/backtrace"
	"github.com/kartikbazzad/queryhost/internal/datum"
	"github.com/kartikbazzad/queryhost/internal/dberrors"
	"github.com/kartikbazzad/queryhost/internal/term"
)

// legacyFrame is the on-the-wire shape of one term in the legacy
// nested-message binary encoding: every term, datum or call alike, is a
// self-describing msgpack map, and calls nest their children as
// further legacyFrame maps rather than a flat opcode/arg-count stream.
// This mirrors the length-prefixed sub-message framing the connection
// layer this core plugs into already uses for every other message on
// the wire.
type legacyFrame struct {
	Opcode  int32                  `msgpack:"op"`
	Datum   interface{}            `msgpack:"datum,omitempty"`
	Args    []legacyFrame          `msgpack:"args,omitempty"`
	Optargs map[string]legacyFrame `msgpack:"optargs,omitempty"`
}

// Legacy parses the legacy nested-message binary term encoding into
// arena, starting at a fresh root term. Each sub-message is a
// self-contained msgpack value; backtraces are not recoverable from
// this wire format, so every term it produces carries backtrace.Empty.
type Legacy struct {
	Arena  *term.Arena
	Limits datum.Limits
}

// NewLegacy builds a Legacy parser targeting arena.
func NewLegacy(arena *term.Arena) *Legacy {
	return &Legacy{Arena: arena, Limits: datum.UnlimitedLimits()}
}

// ParseTerm decodes one length-prefixed legacy sub-message from r and
// returns its handle in l.Arena.
func (l *Legacy) ParseTerm(r io.Reader) (term.Handle, error) {
	length, err := readUint32(r)
	if err != nil {
		return 0, dberrors.NewIoError(err)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, dberrors.NewIoError(err)
	}

	var frame legacyFrame
	if err := msgpack.Unmarshal(buf, &frame); err != nil {
		return 0, dberrors.NewRangeError("legacy sub-message failed to decode: %v", err)
	}
	return l.buildTerm(frame)
}

func (l *Legacy) buildTerm(frame legacyFrame) (term.Handle, error) {
	if term.Opcode(frame.Opcode) == term.OpDatum {
		v, err := datum.FromGo(frame.Datum, l.Limits, datum.SchemaLatest)
		if err != nil {
			return 0, dberrors.NewParseError(backtrace.Empty, "%v", err)
		}
		return l.Arena.NewDatum(v, backtrace.Empty), nil
	}

	h := l.Arena.NewCall(term.Opcode(frame.Opcode), backtrace.Empty)
	for _, argFrame := range frame.Args {
		child, err := l.buildTerm(argFrame)
		if err != nil {
			return 0, err
		}
		l.Arena.PushArg(h, child)
	}
	for name, optFrame := range frame.Optargs {
		child, err := l.buildTerm(optFrame)
		if err != nil {
			return 0, err
		}
		l.Arena.PushOptarg(h, name, child)
	}
	return h, nil
}

// Streaming parses and serializes the latest streaming binary term
// encoding: opcode, backtrace id, then either an embedded datum (for
// OpDatum) or a num_args-prefixed args list followed by a
// num_optargs-prefixed (name, child) list. Every integer field is a
// big-endian uint32/int32/int64, matching datum's own TLV wire style.
type Streaming struct {
	Arena *term.Arena
}

// NewStreaming builds a Streaming codec targeting arena.
func NewStreaming(arena *term.Arena) *Streaming {
	return &Streaming{Arena: arena}
}

// ParseTerm decodes one term from r in the streaming wire format.
func (s *Streaming) ParseTerm(r io.Reader) (term.Handle, error) {
	op, err := readInt32(r)
	if err != nil {
		return 0, dberrors.NewIoError(err)
	}
	btRaw, err := readInt64(r)
	if err != nil {
		return 0, dberrors.NewIoError(err)
	}
	bt := backtrace.ID(btRaw)
	opcode := term.Opcode(op)

	if opcode == term.OpDatum {
		v, err := datum.DecodeBinary(r)
		if err != nil {
			return 0, dberrors.NewIoError(err)
		}
		return s.Arena.NewDatum(v, bt), nil
	}

	h := s.Arena.NewCall(opcode, bt)

	numArgs, err := readSize(r)
	if err != nil {
		return 0, err
	}
	for i := uint32(0); i < numArgs; i++ {
		child, err := s.ParseTerm(r)
		if err != nil {
			return 0, err
		}
		s.Arena.PushArg(h, child)
	}

	numOptargs, err := readSize(r)
	if err != nil {
		return 0, err
	}
	for i := uint32(0); i < numOptargs; i++ {
		nameBytes, err := readLenPrefixedBytes(r)
		if err != nil {
			return 0, dberrors.NewIoError(err)
		}
		child, err := s.ParseTerm(r)
		if err != nil {
			return 0, err
		}
		s.Arena.PushOptarg(h, string(nameBytes), child)
	}

	return h, nil
}

// Serialize writes the term at h to w in the streaming wire format,
// the inverse of ParseTerm. It self-checks that the number of args and
// optargs it wrote matches what the term header declared, the same
// sanity check the source serializer performs before returning.
func (s *Streaming) Serialize(w io.Writer, h term.Handle) error {
	t := s.Arena.Term(s.Arena.Resolve(h))

	if t.Kind == term.KindDatum {
		if err := writeInt32(w, int32(term.OpDatum)); err != nil {
			return err
		}
		if err := writeInt64(w, int64(t.BacktraceID)); err != nil {
			return err
		}
		return datum.EncodeBinary(w, t.Datum)
	}

	if err := writeInt32(w, int32(t.Opcode)); err != nil {
		return err
	}
	if err := writeInt64(w, int64(t.BacktraceID)); err != nil {
		return err
	}

	if err := writeUint32(w, uint32(len(t.Args))); err != nil {
		return err
	}
	written := 0
	for _, arg := range t.Args {
		if err := s.Serialize(w, arg); err != nil {
			return err
		}
		written++
	}
	if written != len(t.Args) {
		return dberrors.NewRangeError("serialize: wrote %d args, header declared %d", written, len(t.Args))
	}

	if err := writeUint32(w, uint32(len(t.Optargs))); err != nil {
		return err
	}
	written = 0
	for _, opt := range t.Optargs {
		if err := writeLenPrefixedBytes(w, []byte(opt.Name)); err != nil {
			return err
		}
		if err := s.Serialize(w, opt.Child); err != nil {
			return err
		}
		written++
	}
	if written != len(t.Optargs) {
		return dberrors.NewRangeError("serialize: wrote %d optargs, header declared %d", written, len(t.Optargs))
	}

	return nil
}

// SerializeToBytes is a convenience wrapper around Serialize for tests
// and the round-trip property check.
func (s *Streaming) SerializeToBytes(h term.Handle) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Serialize(&buf, h); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

// readSize reads a count field (num_args, num_optargs) as a signed
// int32 and rejects a negative value with a RangeError, rather than
// letting it silently reinterpret as a huge unsigned count.
func readSize(r io.Reader) (uint32, error) {
	n, err := readInt32(r)
	if err != nil {
		return 0, dberrors.NewIoError(err)
	}
	if n < 0 {
		return 0, dberrors.NewRangeError("binary stream declared a negative size: %d", n)
	}
	return uint32(n), nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readLenPrefixedBytes(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeLenPrefixedBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
