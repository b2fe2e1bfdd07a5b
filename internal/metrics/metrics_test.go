package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	require.Equal(t, "ok", Result(nil))
	require.Equal(t, "error", Result(errors.New("x")))
}

func TestCollectors_AreUsable(t *testing.T) {
	before := testutil.ToFloat64(DegradedTotal.WithLabelValues(StageTranslation))
	DegradedTotal.WithLabelValues(StageTranslation).Inc()
	require.Equal(t, before+1, testutil.ToFloat64(DegradedTotal.WithLabelValues(StageTranslation)))

	FetchTotal.WithLabelValues("articles", StagePrimary, Result(nil)).Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(FetchTotal.WithLabelValues("articles", StagePrimary, "ok")), 1.0)
}
