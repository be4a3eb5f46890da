package querylog

import (
	"encoding/binary"
	"fmt"

	"go.etcd.io/bbolt"
)

var queryLogBucket = []byte("query_log")

// BoltLog appends query entries to a bbolt bucket, keyed by an
// auto-incrementing sequence so entries stay in arrival order under
// bbolt's own key-sorted iteration — the embedded-log counterpart to
// SQLiteLog for a host that doesn't want a SQL dependency.
type BoltLog struct {
	db *bbolt.DB
}

// OpenBolt opens (creating if necessary) a query log at path.
func OpenBolt(path string) (*BoltLog, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("querylog: open bbolt: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(queryLogBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("querylog: create bucket: %w", err)
	}

	return &BoltLog{db: db}, nil
}

// Append implements Log.
func (l *BoltLog) Append(e Entry) error {
	return l.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(queryLogBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		value := encodeEntry(e)
		return b.Put(key, value)
	})
}

// Close implements Log.
func (l *BoltLog) Close() error { return l.db.Close() }

func encodeEntry(e Entry) []byte {
	buf := make([]byte, 8+4+1+1+8)
	binary.BigEndian.PutUint64(buf[0:8], e.QueryID)
	binary.BigEndian.PutUint32(buf[8:12], uint32(e.Kind))
	if e.NoReply {
		buf[12] = 1
	}
	if e.Profile {
		buf[13] = 1
	}
	binary.BigEndian.PutUint64(buf[14:22], uint64(e.ArrivedAt.UnixNano()))
	return buf
}
