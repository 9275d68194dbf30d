package tmcmc

import "gonum.org/v1/gonum/mat"

// Evaluator is the caller-supplied capability the sampler consumes: a
// log-likelihood and a tempered log-posterior-density. The core never
// computes beta-tempering itself; LogTargetDensity is trusted to already
// encode it.
//
// LogLikelihood is called in two modes: once in batch, over the entire
// initial population (X has N rows), and repeatedly in row mode inside the
// rejuvenation engine (X always has exactly 1 row). In row mode the
// returned slice must have length 1; any other length is an
// *InvalidEvaluatorOutputError.
type Evaluator interface {
	// LogLikelihood returns one log-likelihood value per row of X.
	LogLikelihood(X *mat.Dense) ([]float64, error)
	// LogTargetDensity returns the tempered log-posterior density at x,
	// given its already-computed log-likelihood logL.
	LogTargetDensity(x []float64, logL float64) (float64, error)
}
