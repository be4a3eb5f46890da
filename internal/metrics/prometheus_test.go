package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kartikbazzad/queryhost/internal/dberrors"
)

func TestIngestion_RecordParse(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestion(reg)

	m.RecordParse("start")
	m.RecordParse("start")

	got := testutil.ToFloat64(m.ParsesTotal.WithLabelValues("start"))
	if got != 2 {
		t.Fatalf("ParsesTotal[start] = %v, want 2", got)
	}
}

func TestIngestion_RecordParseError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestion(reg)

	m.RecordParseError(dberrors.ErrorValidation)

	got := testutil.ToFloat64(m.ParseErrorsTotal.WithLabelValues("validation"))
	if got != 1 {
		t.Fatalf("ParseErrorsTotal[validation] = %v, want 1", got)
	}
}

func TestIngestion_SetOutstanding(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewIngestion(reg)

	m.SetOutstanding("conn-1", 5)

	got := testutil.ToFloat64(m.OutstandingGauge.WithLabelValues("conn-1"))
	if got != 5 {
		t.Fatalf("OutstandingGauge[conn-1] = %v, want 5", got)
	}
}
