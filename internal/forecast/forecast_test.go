package forecast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFragmentationModel_ObserveAndPredict is a smoke test: the model is
// diagnostic-only, so this just checks the training loop runs to
// completion and produces a finite prediction, not any particular value.
func TestFragmentationModel_ObserveAndPredict(t *testing.T) {
	m := New()

	samples := []struct {
		count int
		ratio float64
	}{
		{64, 0.1},
		{128, 0.2},
		{192, 0.3},
		{256, 0.4},
	}
	for _, s := range samples {
		require.NoError(t, m.Observe(s.count, s.ratio))
	}

	val, err := m.Predict(256)
	require.NoError(t, err)
	require.False(t, val != val, "prediction must not be NaN") // NaN != NaN
}
