package tmcmc

import "gonum.org/v1/gonum/mat"

// StageRecord is the tuple (samples, logL, logPi, beta, logZInc) for one
// stage of a run. Samples is N-by-d; LogL and LogTarget have length N.
type StageRecord struct {
	Samples   *mat.Dense
	LogL      []float64
	LogTarget []float64
	Beta      float64
	LogZInc   float64
}

// N returns the population size of the stage.
func (s StageRecord) N() int {
	n, _ := s.Samples.Dims()
	return n
}

// Dim returns the sample dimensionality of the stage.
func (s StageRecord) Dim() int {
	_, d := s.Samples.Dims()
	return d
}

// Run is the ordered stage history produced by Sample: a dense, monotonic
// sequence of stages indexed by position.
type Run []StageRecord

// Final returns the last stage in the run, the one with Beta == 1 once the
// run has completed.
func (r Run) Final() StageRecord {
	return r[len(r)-1]
}

// TotalLogEvidence sums every stage's log-evidence increment, the run's
// estimate of log integral prior(x) L(x) dx.
func (r Run) TotalLogEvidence() float64 {
	var total float64
	for _, s := range r {
		total += s.LogZInc
	}
	return total
}
