package querylog

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/kartikbazzad/queryhost/internal/config"
	"github.com/kartikbazzad/queryhost/internal/queryparams"
)

func TestBoltLog_AppendAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.log")
	log, err := OpenBolt(path)
	if err != nil {
		t.Fatalf("OpenBolt: %v", err)
	}
	defer log.Close()

	entry := Entry{
		QueryID:   1,
		Kind:      queryparams.KindStart,
		NoReply:   false,
		Profile:   true,
		ArrivedAt: time.Now(),
	}
	if err := log.Append(entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
}

func TestOpen_NoneBackendReturnsNil(t *testing.T) {
	log, err := Open(config.ParserConfig{QueryLogBackend: config.LogBackendNone}, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if log != nil {
		t.Fatalf("Open(LogBackendNone) = %v, want nil", log)
	}
}

func TestOpen_BoltBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.log")
	log, err := Open(config.ParserConfig{QueryLogBackend: config.LogBackendBolt}, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer log.Close()
	if _, ok := log.(*BoltLog); !ok {
		t.Fatalf("Open(LogBackendBolt) returned %T, want *BoltLog", log)
	}
}

func TestSQLiteLog_AppendAndClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.db")
	log, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer log.Close()

	entry := Entry{
		QueryID:   2,
		Kind:      queryparams.KindContinue,
		NoReply:   true,
		Profile:   false,
		ArrivedAt: time.Now(),
	}
	if err := log.Append(entry); err != nil {
		t.Fatalf("Append: %v", err)
	}
}
