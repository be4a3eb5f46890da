package datum

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Wire tags for the streaming binary datum encoding. Grounded on the
// same length-prefixed, big-endian TLV style as the ipc frame codec
// this core's binary term protocol is adapted from.
const (
	tagNull   byte = 0
	tagFalse  byte = 1
	tagTrue   byte = 2
	tagNumber byte = 3
	tagString byte = 4
	tagArray  byte = 5
	tagObject byte = 6
	tagTime   byte = 7
)

// EncodeBinary writes v to w in the streaming datum wire format.
func EncodeBinary(w io.Writer, v Value) error {
	switch v.tag {
	case TagNull:
		return writeByte(w, tagNull)
	case TagBool:
		if v.b {
			return writeByte(w, tagTrue)
		}
		return writeByte(w, tagFalse)
	case TagNumber:
		if err := writeByte(w, tagNumber); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, v.n)
	case TagString:
		if err := writeByte(w, tagString); err != nil {
			return err
		}
		return writeLenPrefixed(w, []byte(v.s))
	case TagArray:
		if err := writeByte(w, tagArray); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(v.arr))); err != nil {
			return err
		}
		for _, item := range v.arr {
			if err := EncodeBinary(w, item); err != nil {
				return err
			}
		}
		return nil
	case TagObject:
		if err := writeByte(w, tagObject); err != nil {
			return err
		}
		if err := binary.Write(w, binary.BigEndian, uint32(len(v.obj))); err != nil {
			return err
		}
		for _, m := range v.obj {
			if err := writeLenPrefixed(w, []byte(m.Key)); err != nil {
				return err
			}
			if err := EncodeBinary(w, m.Value); err != nil {
				return err
			}
		}
		return nil
	case TagTime:
		if err := writeByte(w, tagTime); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, float64(v.t.UnixNano())/1e9)
	default:
		return fmt.Errorf("datum: cannot encode unknown tag %d", v.tag)
	}
}

// DecodeBinary reads one Value from r in the streaming datum wire format.
func DecodeBinary(r io.Reader) (Value, error) {
	tag, err := readByte(r)
	if err != nil {
		return Value{}, err
	}
	switch tag {
	case tagNull:
		return Null(), nil
	case tagFalse:
		return Bool(false), nil
	case tagTrue:
		return Bool(true), nil
	case tagNumber:
		var n float64
		if err := binary.Read(r, binary.BigEndian, &n); err != nil {
			return Value{}, err
		}
		return Number(n), nil
	case tagString:
		b, err := readLenPrefixed(r)
		if err != nil {
			return Value{}, err
		}
		return String(string(b)), nil
	case tagArray:
		count, err := readUint32(r)
		if err != nil {
			return Value{}, err
		}
		items := make([]Value, count)
		for i := range items {
			item, err := DecodeBinary(r)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return Array(items), nil
	case tagObject:
		count, err := readUint32(r)
		if err != nil {
			return Value{}, err
		}
		members := make([]Member, count)
		for i := range members {
			keyBytes, err := readLenPrefixed(r)
			if err != nil {
				return Value{}, err
			}
			val, err := DecodeBinary(r)
			if err != nil {
				return Value{}, err
			}
			members[i] = Member{Key: string(keyBytes), Value: val}
		}
		return Object(members), nil
	case tagTime:
		var secs float64
		if err := binary.Read(r, binary.BigEndian, &secs); err != nil {
			return Value{}, err
		}
		return Time(time.Unix(0, int64(secs*1e9))), nil
	default:
		return Value{}, fmt.Errorf("datum: unknown wire tag %d", tag)
	}
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeLenPrefixed(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.BigEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLenPrefixed(r io.Reader) ([]byte, error) {
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

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}
