// Package tmcmc implements a Transitional Markov Chain Monte Carlo sampler:
// an adaptive, multi-stage Bayesian inference engine that carries a
// population of prior-distributed samples to the posterior through a
// sequence of tempered intermediate distributions, while producing an
// unbiased estimate of the model evidence.
//
// A caller drives the sampler by implementing Evaluator (the log-likelihood
// and tempered log-posterior-density) and calling Sample with an initial,
// prior-distributed StageRecord. Sample returns the full stage history as a
// Run value; the final element has Beta == 1.
//
// tmcmc consumes gonum.org/v1/gonum/mat matrices for populations and
// gonum.org/v1/gonum/stat/distuv distributions for all random draws, so that
// a run is exactly reproducible given the same golang.org/x/exp/rand source.
package tmcmc
