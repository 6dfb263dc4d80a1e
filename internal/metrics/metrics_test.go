package metrics

import (
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jeffreymorganio/songza-commands-for-enso/internal/domain"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeOK},
		{fmt.Errorf("%w: 404", domain.ErrFeedStatus), OutcomeStatus},
		{fmt.Errorf("%w: got <feed>", domain.ErrFeedRootMismatch), OutcomeRootMismatch},
		{fmt.Errorf("%w: eof", domain.ErrFeedFormat), OutcomeFormat},
		{fmt.Errorf("%w: dial tcp", domain.ErrFeedTransport), OutcomeTransport},
	}
	for _, tt := range tests {
		if got := Outcome(tt.err); got != tt.want {
			t.Errorf("Outcome(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CommandDispatched("list", ResultAccepted)
	m.CommandDispatched("list", ResultAccepted)
	m.CommandDispatched("unknown", ResultUnknown)
	m.FetchCompleted(nil, 10*time.Millisecond)
	m.FetchCompleted(domain.ErrFeedFormat, time.Millisecond)
	m.EntriesSkipped(3)
	m.EntriesSkipped(0)
	m.WorkerStarted()
	m.WorkerStarted()
	m.WorkerFinished()

	if got := testutil.ToFloat64(m.commands.WithLabelValues("list", ResultAccepted)); got != 2 {
		t.Errorf("accepted list commands = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.fetches.WithLabelValues(OutcomeFormat)); got != 1 {
		t.Errorf("format fetches = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.skipped); got != 3 {
		t.Errorf("skipped = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.activeWorkers); got != 1 {
		t.Errorf("active workers = %v, want 1", got)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.CommandDispatched("list", ResultAccepted)
	m.FetchCompleted(nil, time.Second)
	m.EntriesSkipped(1)
	m.WorkerStarted()
	m.WorkerFinished()
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CommandDispatched("playlist", ResultAccepted)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `songza_enso_commands_total{command="playlist",result="accepted"} 1`) {
		t.Errorf("exposition missing command counter:\n%s", body)
	}
}
