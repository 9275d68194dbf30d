// Package kernel computes self-normalized importance weights and the
// associated log-evidence increment from a vector of log-likelihoods and a
// beta increment, on top of gonum/floats' LogSumExp/Max and gonum/stat's
// MeanStdDev.
package kernel

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateWeights is returned when every log-likelihood is -Inf or NaN,
// so no finite weight can be formed.
var ErrDegenerateWeights = errors.New("kernel: degenerate weights: all log-likelihoods are -Inf or NaN")

// Weights computes the self-normalized importance weights for the given beta
// increment and log-likelihoods, along with this stage's log-evidence
// increment logsumexp(deltaBeta*logL) - log(N).
//
// The returned weights sum to 1 and contain no NaN. If every entry of
// deltaBeta*logL is -Inf, or any entry is NaN, Weights returns
// ErrDegenerateWeights.
func Weights(deltaBeta float64, logL []float64) (weights []float64, logEvidenceInc float64, err error) {
	n := len(logL)
	x := make([]float64, n)
	for i, l := range logL {
		x[i] = deltaBeta * l
	}

	weights, err = normalize(x)
	if err != nil {
		return nil, math.Inf(-1), err
	}

	logEvidenceInc = floats.LogSumExp(x) - math.Log(float64(n))
	return weights, logEvidenceInc, nil
}

// WeightsFromLog normalizes an arbitrary vector of log-weights (not
// necessarily deltaBeta*logL) via the same stabilized log-sum-exp pattern,
// for callers -- such as the warm-start selector -- that already have the
// log-weight expression in hand and have no use for a log-evidence
// increment.
func WeightsFromLog(logWeights []float64) (weights []float64, err error) {
	return normalize(logWeights)
}

// normalize applies the numerically stable log-sum-exp normalization shared
// by Weights and WeightsFromLog: subtract the max before exponentiating
// (floats.Max), normalize by the sum.
func normalize(x []float64) (weights []float64, err error) {
	if len(x) == 0 {
		return nil, ErrDegenerateWeights
	}
	max := floats.Max(x)
	if math.IsInf(max, -1) || math.IsNaN(max) {
		return nil, ErrDegenerateWeights
	}

	weights = make([]float64, len(x))
	var sum float64
	for i, xi := range x {
		w := math.Exp(xi - max)
		weights[i] = w
		sum += w
	}
	if sum == 0 || math.IsNaN(sum) {
		return nil, ErrDegenerateWeights
	}
	floats.Scale(1/sum, weights)
	return weights, nil
}

// CoV returns the coefficient of variation (stddev/mean) of w, via
// gonum/stat's MeanStdDev. A NaN mean or standard deviation is treated as
// CoV = +Inf, so a stepper bracketing it against a finite threshold always
// sees it as "too spread out".
func CoV(w []float64) float64 {
	mean, std := stat.MeanStdDev(w, nil)
	if math.IsNaN(mean) || math.IsNaN(std) {
		return math.Inf(1)
	}
	return std / mean
}
