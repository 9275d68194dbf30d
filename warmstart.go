package tmcmc

import (
	"gonum.org/v1/gonum/mat"

	"github.com/adbailey/tmcmc/internal/kernel"
)

// WarmStart scans a prior run's stages in descending order and returns the
// highest stage index whose importance weights, recomputed under a new
// (cheaper or updated) log-likelihood approximation, have coefficient of
// variation below threshold. It returns 0 (restart from the prior) if no
// stage qualifies.
//
// The weight expression is an importance correction treating the stored
// samples as proposals for the new tempered target at the same beta:
//
//	w_i ∝ exp( beta[s] * (newLogLikelihood(samples[s])_i - logL[s]_i) )
func WarmStart(prior Run, newLogLikelihood func(*mat.Dense) ([]float64, error), threshold float64) (int, error) {
	for s := len(prior) - 1; s >= 0; s-- {
		stage := prior[s]

		newLogL, err := newLogLikelihood(stage.Samples)
		if err != nil {
			return 0, err
		}
		if len(newLogL) != stage.N() {
			return 0, &InvalidEvaluatorOutputError{Size: len(newLogL)}
		}

		logWeights := make([]float64, stage.N())
		for i := range logWeights {
			logWeights[i] = stage.Beta * (newLogL[i] - stage.LogL[i])
		}
		w, err := kernel.WeightsFromLog(logWeights)
		if err != nil {
			// Degenerate re-weighting at this stage; it cannot be a warm
			// start candidate, try an earlier (cooler) stage.
			continue
		}

		if kernel.CoV(w) < threshold {
			return s, nil
		}
	}
	return 0, nil
}
