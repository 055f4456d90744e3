package model

import (
	"math"
	"sort"

	"StockCast/internal/domain/models"
)

// Regressor is the minimal learning contract the pipeline depends on.
// The concrete booster is an implementation detail behind it.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Gradient-boosting defaults.
const (
	DefaultRounds       = 100
	DefaultLearningRate = 0.1
)

// stump is a single-split regression tree: rows with the feature value at
// or below Threshold get Left, the rest get Right.
type stump struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      float64 `json:"left"`
	Right     float64 `json:"right"`
	Gain      float64 `json:"gain"`
}

// GradientBoost is a boosted ensemble of regression stumps fit on
// residuals. It is deterministic for a given input and its whole state is
// JSON-serializable, which is what the artifact format relies on.
type GradientBoost struct {
	Rounds       int     `json:"rounds"`
	LearningRate float64 `json:"learning_rate"`
	Base         float64 `json:"base"`
	Stumps       []stump `json:"stumps"`

	numFeatures int
}

// NewGradientBoost returns a booster with the default hyperparameters.
func NewGradientBoost() *GradientBoost {
	return &GradientBoost{Rounds: DefaultRounds, LearningRate: DefaultLearningRate}
}

// Fit trains the ensemble on residuals. X is row-major with one column per
// feature; every row must have the same width as the first. Boosting stops
// early once no split reduces the residual error.
func (g *GradientBoost) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return models.ErrNoData
	}
	g.numFeatures = len(X[0])
	g.Stumps = g.Stumps[:0]
	g.Base = mean(y)

	pred := make([]float64, len(y))
	for i := range pred {
		pred[i] = g.Base
	}
	residual := make([]float64, len(y))
	for r := 0; r < g.Rounds; r++ {
		for i := range y {
			residual[i] = y[i] - pred[i]
		}
		s, ok := bestStump(X, residual)
		if !ok {
			break
		}
		g.Stumps = append(g.Stumps, s)
		for i, row := range X {
			pred[i] += g.LearningRate * s.apply(row)
		}
	}
	return nil
}

// Predict returns one prediction per input row. Rows narrower than the
// training width are treated as zero-padded, matching the NaN-to-zero fill
// the predictor applies upstream.
func (g *GradientBoost) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		p := g.Base
		for _, s := range g.Stumps {
			p += g.LearningRate * s.apply(row)
		}
		out[i] = p
	}
	return out
}

// FeatureImportance returns each feature's share of the total error
// reduction across all boosting rounds, indexed by feature position.
// Shares sum to 1 unless the ensemble is empty.
func (g *GradientBoost) FeatureImportance() []float64 {
	width := g.numFeatures
	for _, s := range g.Stumps {
		if s.Feature >= width {
			width = s.Feature + 1
		}
	}
	imp := make([]float64, width)
	total := 0.0
	for _, s := range g.Stumps {
		imp[s.Feature] += s.Gain
		total += s.Gain
	}
	if total > 0 {
		for i := range imp {
			imp[i] /= total
		}
	}
	return imp
}

func (s stump) apply(row []float64) float64 {
	v := 0.0
	if s.Feature < len(row) {
		v = row[s.Feature]
	}
	if v <= s.Threshold {
		return s.Left
	}
	return s.Right
}

// bestStump scans every feature and every adjacent-midpoint threshold for
// the split with the largest residual sum-of-squares reduction.
func bestStump(X [][]float64, residual []float64) (stump, bool) {
	n := len(X)
	best := stump{}
	found := false

	order := make([]int, n)
	vals := make([]float64, n)
	for f := 0; f < len(X[0]); f++ {
		for i := range order {
			order[i] = i
			vals[i] = X[i][f]
		}
		sort.Slice(order, func(a, b int) bool { return vals[order[a]] < vals[order[b]] })

		leftSum, leftN := 0.0, 0
		totalSum := 0.0
		for _, r := range residual {
			totalSum += r
		}
		for k := 0; k < n-1; k++ {
			i := order[k]
			leftSum += residual[i]
			leftN++
			if vals[order[k]] == vals[order[k+1]] {
				continue
			}
			rightSum := totalSum - leftSum
			rightN := n - leftN
			leftMean := leftSum / float64(leftN)
			rightMean := rightSum / float64(rightN)
			// SSE reduction of a two-leaf split given leaf means.
			gain := leftSum*leftMean + rightSum*rightMean -
				totalSum*totalSum/float64(n)
			if gain <= 1e-12 {
				continue
			}
			if !found || gain > best.Gain {
				best = stump{
					Feature:   f,
					Threshold: (vals[order[k]] + vals[order[k+1]]) / 2,
					Left:      leftMean,
					Right:     rightMean,
					Gain:      gain,
				}
				found = true
			}
		}
	}
	if !found {
		return stump{}, false
	}
	return best, true
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
