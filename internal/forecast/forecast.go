// Package forecast trains a strictly diagnostic regression over a
// scenario's running fragmentation ratio, mirroring the role
// kernel/threads/intelligence/learning/engine.go's costModel plays:
// a learned model that advises, never decides. It is never consulted by
// Allocate/Deallocate/findFit, preserving spec.md's "heuristic
// bin-packer, not an optimiser" Non-goal.
package forecast

import (
	"fmt"

	"github.com/cdipaolo/goml/base"
	"github.com/cdipaolo/goml/linear"
)

// FragmentationModel predicts a caller-observed fragmentation ratio as a
// function of allocation count, trained online from observed samples. The
// model does not define the ratio; internal/demo feeds it the share of
// live blocks whose area is below the fragment threshold.
type FragmentationModel struct {
	model *linear.LeastSquares
	xs    [][]float64
	ys    []float64
}

// New builds a model seeded with a single zero datapoint, the same
// dummy-then-retrain pattern learning.NewEnhancedLearningEngine uses to
// avoid constructing goml's LeastSquares with an empty training set.
func New() *FragmentationModel {
	dummyX := [][]float64{{0}}
	dummyY := []float64{0}
	return &FragmentationModel{
		model: linear.NewLeastSquares(base.BatchGA, 0.0001, 0, 100, dummyX, dummyY),
		xs:    dummyX,
		ys:    dummyY,
	}
}

// Observe records one (allocation count, fragmentation ratio) sample and
// retrains the model against the full accumulated series.
func (m *FragmentationModel) Observe(allocCount int, fragmentationRatio float64) error {
	m.xs = append(m.xs, []float64{float64(allocCount)})
	m.ys = append(m.ys, fragmentationRatio)

	if err := m.model.UpdateTrainingSet(m.xs, m.ys); err != nil {
		return fmt.Errorf("forecast: update training set: %w", err)
	}
	if err := m.model.Learn(); err != nil {
		return fmt.Errorf("forecast: learn: %w", err)
	}
	return nil
}

// Predict estimates the fragmentation ratio at the given allocation
// count. The caller decides what, if anything, to do with the value —
// nothing downstream of Predict feeds back into placement.
func (m *FragmentationModel) Predict(allocCount int) (float64, error) {
	out, err := m.model.Predict([]float64{float64(allocCount)})
	if err != nil {
		return 0, fmt.Errorf("forecast: predict: %w", err)
	}
	if len(out) == 0 {
		return 0, fmt.Errorf("forecast: empty prediction")
	}
	return out[0], nil
}
