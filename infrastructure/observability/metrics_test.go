package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Hooks(t *testing.T) {
	c := NewCollector("canvas")

	c.GestureStarted("drag")
	c.GestureStarted("drag")
	c.GestureRejected("link", "self_link")
	c.MergeResolved("merged")
	c.ActionRecorded("pan", false)
	c.ActionRecorded("pan", true)
	c.SaveCompleted("saveAction", errors.New("boom"), time.Millisecond)
	c.CommandHandled("MoveNodeCommand", nil, time.Millisecond)
	c.QueryHandled("GetViewportQuery", nil, time.Millisecond)
	c.StoreOperation("saveProject", "memory", nil, time.Millisecond)
	c.BreakerStateChanged("persistence", 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Gestures.WithLabelValues("drag")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GestureRejects.WithLabelValues("link", "self_link")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Actions.WithLabelValues("pan", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Saves.WithLabelValues("saveAction", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Requests.WithLabelValues("command", "MoveNodeCommand", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Requests.WithLabelValues("query", "GetViewportQuery", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.BreakerState.WithLabelValues("persistence")))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("canvas")
	b := NewCollector("canvas")
	a.MergeResolved("merged")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.MergeResolutions.WithLabelValues("merged")))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("canvas")
	c.GestureStarted("pan")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `canvas_gestures_started_total{kind="pan"} 1`)
}
