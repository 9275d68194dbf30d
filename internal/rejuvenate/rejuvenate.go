// Package rejuvenate implements the adaptive Metropolis-Hastings rejuvenation
// engine: for each of N output rows it draws a seed from the resampling
// distribution (weighted by the current importance weights) and advances it
// through a short MH chain, adapting the proposal scale every AdaptFrequency
// steps. Random draws are taken from gonum/stat/distuv (Categorical for the
// seed draw, Normal for proposal noise, Uniform for the accept test), all
// seeded from a single golang.org/x/exp/rand.Source so the draw order is
// reproducible.
package rejuvenate

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/adbailey/tmcmc/internal/kernel"
	"github.com/adbailey/tmcmc/internal/proposal"
)

// InvalidEvaluatorOutputError reports that an evaluator returned a
// multi-element result where the contract requires exactly one value.
type InvalidEvaluatorOutputError struct {
	Size int
}

func (e *InvalidEvaluatorOutputError) Error() string {
	return fmt.Sprintf("expected a single value, but got %d values", e.Size)
}

// LogLikelihoodFunc evaluates the log-likelihood at the rows of x, returning
// one value per row. For the row-mode calls this package makes, x always has
// exactly one row and the returned slice must have length 1.
type LogLikelihoodFunc func(x *mat.Dense) ([]float64, error)

// LogTargetDensityFunc evaluates the tempered log-posterior density at a
// single point x, given its already-computed log-likelihood.
type LogTargetDensityFunc func(x []float64, logL float64) (float64, error)

// Params collects the per-stage rejuvenation configuration.
type Params struct {
	NumSteps             int
	ThinningFactor       int
	AdaptFrequency       int
	BurnInSteps          int
	TargetAcceptanceRate float64
	InitialScale         float64
	Beta                 float64
	NewBeta              float64
	DoThinning           bool
}

// Result is the output population of one stage's rejuvenation pass, plus the
// final adapted proposal scale (not carried across stages; see the stage
// driver).
type Result struct {
	Samples    *mat.Dense
	LogL       []float64
	LogTarget  []float64
	FinalScale float64
}

// Run executes the rejuvenation engine for one stage. samples/logL/logPi are
// the stage-entry population; weights are the importance weights computed
// from that population at the new beta. ll and ltd are the user-supplied
// evaluators in row-call mode.
func Run(
	samples *mat.Dense, logL, logPi, weights []float64,
	params Params,
	ll LogLikelihoodFunc, ltd LogTargetDensityFunc,
	rng *rand.Rand,
	logger logrus.FieldLogger,
) (Result, error) {
	n, d := samples.Dims()

	currentSamples := mat.NewDense(n, d, nil)
	currentSamples.Copy(samples)
	currentLogL := append([]float64(nil), logL...)
	currentLogPi := append([]float64(nil), logPi...)
	// weights evolves in place as acceptances past burn-in reweight the
	// partially-rejuvenated population; this local copy is what the
	// categorical resampler draws from at the top of each outer iteration.
	w := append([]float64(nil), weights...)

	scale := params.InitialScale
	_, chol, err := proposal.Build(currentSamples, w, scale)
	if err != nil {
		return Result{}, err
	}
	l := proposal.LowerTriangular(chol)

	outSamples := mat.NewDense(n, d, nil)
	outLogL := make([]float64, n)
	outLogPi := make([]float64, n)

	numAccepts := 0
	nAdapt := 1
	stepCount := 0

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	uniform := distuv.Uniform{Min: 0, Max: 1, Src: rng}

	for k := 0; k < params.BurnInSteps+n; k++ {
		idx := int(distuv.NewCategorical(w, rng).Rand())

		numStepsThisRow := params.NumSteps
		if k >= params.BurnInSteps && (params.NewBeta == 1 || params.DoThinning) {
			numStepsThisRow = params.NumSteps * params.ThinningFactor
		}

		for step := 0; step < numStepsThisRow; step++ {
			stepCount++
			if stepCount%params.AdaptFrequency == 0 {
				acceptRate := float64(numAccepts) / float64(params.AdaptFrequency)
				numAccepts = 0
				nAdapt++
				ca := (acceptRate - params.TargetAcceptanceRate) / math.Sqrt(float64(nAdapt))
				scale *= math.Exp(ca)

				_, chol, err = proposal.Build(currentSamples, w, scale)
				if err != nil {
					return Result{}, err
				}
				l = proposal.LowerTriangular(chol)
				if logger != nil {
					logger.WithFields(logrus.Fields{
						"scale_factor": scale,
						"accept_rate":  acceptRate,
						"n_adapt":      nAdapt,
					}).Debug("rejuvenate: adapted proposal scale")
				}
			}

			z := make([]float64, d)
			for i := range z {
				z[i] = normal.Rand()
			}
			var lz mat.VecDense
			lz.MulVec(l, mat.NewVecDense(d, z))

			proposed := make([]float64, d)
			for j := 0; j < d; j++ {
				proposed[j] = currentSamples.At(idx, j) + lz.AtVec(j)
			}
			proposedRow := mat.NewDense(1, d, proposed)

			llVals, err := ll(proposedRow)
			if err != nil {
				return Result{}, err
			}
			if len(llVals) != 1 {
				return Result{}, &InvalidEvaluatorOutputError{Size: len(llVals)}
			}
			llStar := llVals[0]

			piStar, err := ltd(proposed, llStar)
			if err != nil {
				return Result{}, err
			}

			logAlpha := piStar - currentLogPi[idx]
			u := uniform.Rand()
			if math.Log(u) <= logAlpha {
				numAccepts++
				currentSamples.SetRow(idx, proposed)
				currentLogL[idx] = llStar
				currentLogPi[idx] = piStar

				if k >= params.BurnInSteps {
					w, _, err = kernel.Weights(params.NewBeta-params.Beta, currentLogL)
					if err != nil {
						return Result{}, err
					}
				}
			}
		}

		if k >= params.BurnInSteps {
			kPrime := k - params.BurnInSteps
			outSamples.SetRow(kPrime, currentSamples.RawRowView(idx))
			outLogL[kPrime] = currentLogL[idx]
			outLogPi[kPrime] = currentLogPi[idx]
		}
	}

	return Result{Samples: outSamples, LogL: outLogL, LogTarget: outLogPi, FinalScale: scale}, nil
}
