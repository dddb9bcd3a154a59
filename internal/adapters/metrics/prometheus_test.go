package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/taskmate/internal/domain"
)

func TestRecorderCountsEvents(t *testing.T) {
	t.Parallel()

	rec := NewPrometheusRecorder()
	rec.ObserveVerdict(domain.Accepted("Ravi"))
	rec.ObserveVerdict(domain.NeedsConfirmation("Rave", "Ravi", 83))
	rec.ObserveVerdict(domain.NeedsConfirmation("Ankti", "Ankita", 87))
	rec.ObserveAdvance(domain.OutcomeApplied)
	rec.ObserveSweep(3)
	rec.ObserveSweep(0)
	rec.SetActiveSessions(5)
	rec.ObserveCompletion("gpt-test", 20*time.Millisecond, nil)
	rec.ObserveCompletion("gpt-test", time.Second, errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(rec.verdictsTotal.WithLabelValues("needs_confirmation")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.verdictsTotal.WithLabelValues("accepted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.advancesTotal.WithLabelValues("applied")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(rec.sweptTotal), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(rec.activeSessions), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(rec.completionsTotal.WithLabelValues("gpt-test", "error")), 0)
}

func TestHandlerServesRegistry(t *testing.T) {
	t.Parallel()

	rec := NewPrometheusRecorder()
	rec.SetActiveSessions(2)

	srv := httptest.NewServer(rec.Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "taskmate_active_sessions 2")
}

func TestRecordersDoNotCollide(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		NewPrometheusRecorder()
		NewPrometheusRecorder()
	})
}
