package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHelpersAreNoopsBeforeInit(t *testing.T) {
	if TriggersTotal != nil {
		t.Skip("metrics already initialised by another test")
	}
	assert.NotPanics(t, func() {
		Trigger("shiny")
		Interrupt()
		Locked("countdown")
		LockFailed("revoke")
		Unlocked("auto")
		StaleTimer("countdown")
		SetChannels(1, 2)
	})
}

func TestCountersAfterInit(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(TriggersTotal.WithLabelValues("rare"))
	Trigger("rare")
	Trigger("rare")
	assert.Equal(t, before+2, testutil.ToFloat64(TriggersTotal.WithLabelValues("rare")))

	SetChannels(3, 4)
	assert.Equal(t, float64(3), testutil.ToFloat64(ChannelsGauge.WithLabelValues("countdown")))
	assert.Equal(t, float64(4), testutil.ToFloat64(ChannelsGauge.WithLabelValues("locked")))
}

func TestHandlerExposesLockMetrics(t *testing.T) {
	Init()
	Interrupt()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "lock_interrupts_total"))
}
