// Package querylog appends a record of every ingested query — its
// kind, whether it was noreply/profile, and when it arrived — to a
// durable log. Two backends are provided: a modernc.org/sqlite table
// for a host that wants the log queryable with SQL, and a bbolt bucket
// for a host that wants an embedded, dependency-free append log. Both
// satisfy the same Log interface, so a host picks one at startup and
// the rest of the ingestion core never knows which.
package querylog

import (
	"fmt"
	"time"

	"github.com/kartikbazzad/queryhost/internal/config"
	"github.com/kartikbazzad/queryhost/internal/queryparams"
)

// Entry is one logged query.
type Entry struct {
	QueryID   uint64
	Kind      queryparams.Kind
	NoReply   bool
	Profile   bool
	ArrivedAt time.Time
}

// Log durably records ingested queries.
type Log interface {
	Append(e Entry) error
	Close() error
}

// Open constructs the Log backend selected by cfg, or (nil, nil) if
// the host configured no query log at all.
func Open(cfg config.ParserConfig, path string) (Log, error) {
	switch cfg.QueryLogBackend {
	case config.LogBackendNone:
		return nil, nil
	case config.LogBackendSQLite:
		return OpenSQLite(path)
	case config.LogBackendBolt:
		return OpenBolt(path)
	default:
		return nil, fmt.Errorf("querylog: unknown backend %d", cfg.QueryLogBackend)
	}
}
