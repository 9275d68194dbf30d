// Package stepper implements the adaptive temperature step: given the
// current log-likelihoods and beta, it picks the next beta so that the
// coefficient of variation of the resulting importance weights equals a
// target threshold. Bracketing and bisection check a sign change across
// the bracket before iterating, then fall back to a geometric shrinkage
// search if the root isn't found.
package stepper

import (
	"math"

	"github.com/adbailey/tmcmc/internal/kernel"
)

const (
	maxBisectionIters = 200
	bisectionTol      = 1e-10
	shrinkageFactor   = 0.99
	maxShrinkageIters = 10000
)

// objective evaluates CoV(weights(deltaBeta, logL)) - threshold.
func objective(logL []float64, deltaBeta, threshold float64) float64 {
	w, _, err := kernel.Weights(deltaBeta, logL)
	if err != nil {
		// Degenerate weights behave like an infinitely spread distribution:
		// CoV is +Inf, so the objective is always positive here.
		return math.Inf(1)
	}
	return kernel.CoV(w) - threshold
}

// NextBeta returns the next temperature, increasing beta just enough that
// the weight coefficient of variation equals threshold. If the CoV never
// reaches threshold within the feasible range [0, 1-beta], it returns 1
// (jump straight to the posterior). This never returns an error: every
// input that can occur inside a stage has a well-defined next beta.
func NextBeta(logL []float64, beta, threshold float64) float64 {
	remaining := 1 - beta
	if remaining <= 0 {
		return 1
	}

	f0 := objective(logL, 0, threshold)
	f1 := objective(logL, remaining, threshold)
	if sign(f0) == sign(f1) {
		return 1
	}

	if root, ok := bisect(logL, threshold, 0, remaining, f0, f1); ok {
		return math.Min(beta+root, 1)
	}

	// Fallback: geometric shrinkage from the far end of the bracket.
	deltaBeta := remaining
	for i := 0; i < maxShrinkageIters; i++ {
		if objective(logL, deltaBeta, threshold) <= 0 {
			break
		}
		deltaBeta *= shrinkageFactor
	}
	return math.Min(beta+deltaBeta, 1)
}

// bisect finds a root of deltaBeta -> objective(logL, deltaBeta, threshold)
// in [lo, hi], given the objective's values at the endpoints already equal
// flo and fhi. ok is false if the iteration budget is exhausted without
// converging to within bisectionTol.
func bisect(logL []float64, threshold, lo, hi, flo, fhi float64) (root float64, ok bool) {
	for i := 0; i < maxBisectionIters; i++ {
		mid := 0.5 * (lo + hi)
		fmid := objective(logL, mid, threshold)
		if math.Abs(fmid) <= bisectionTol || hi-lo < bisectionTol {
			return mid, true
		}
		if sign(fmid) == sign(flo) {
			lo, flo = mid, fmid
		} else {
			hi, fhi = mid, fmid
		}
	}
	return 0, false
}

func sign(x float64) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
