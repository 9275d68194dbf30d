package tmcmc

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/adbailey/tmcmc/internal/kernel"
	"github.com/adbailey/tmcmc/internal/rejuvenate"
	"github.com/adbailey/tmcmc/internal/stepper"
)

// Sample drives the TMCMC stage engine forward from initial (stage 0,
// beta=0, LogZInc=0) until a stage with Beta == 1 is appended, executing
// one stage per loop iteration: advance beta, compute the evidence
// increment and importance weights, build the proposal covariance,
// rejuvenate, and append the new StageRecord.
//
// ctx is checked for cancellation between stages, never inside one: the
// inner MH loop is stage-serial and does not suspend.
//
// cfg is defaulted and validated once at entry. If logger is nil, a discard
// logger is used and Sample produces no output.
func Sample(ctx context.Context, initial StageRecord, eval Evaluator, rng *rand.Rand, cfg Config, logger logrus.FieldLogger) (Run, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NewDiscardLogger()
	}

	d := initial.Dim()
	targetAcceptanceRate := 0.23 + 0.21/float64(d)
	initialScale := 2.4 / math.Sqrt(float64(d))

	run := Run{initial}

	for {
		current := run[len(run)-1]
		if current.Beta >= 1 {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		isFinalByThinning := false
		next, err := runStage(current, eval, rng, cfg, targetAcceptanceRate, initialScale, isFinalByThinning, logger)
		if err != nil {
			return nil, err
		}
		run = append(run, next.StageRecord)

		logger.WithFields(logrus.Fields{
			"stage":        len(run) - 1,
			"beta":         next.Beta,
			"delta_beta":   next.Beta - current.Beta,
			"log_z_inc":    next.LogZInc,
			"scale_factor": next.scaleFactor,
		}).Info("tmcmc: stage complete")
	}

	return run, nil
}

// runStage executes one stage: temperature step, weight/evidence
// computation, and rejuvenation. doThinning is always false here; the
// final stage's extra thinning is triggered implicitly by the stepper
// returning beta==1, which rejuvenate.Run checks directly.
func runStage(
	current StageRecord,
	eval Evaluator,
	rng *rand.Rand,
	cfg Config,
	targetAcceptanceRate, initialScale float64,
	doThinning bool,
	logger logrus.FieldLogger,
) (stageRecord, error) {
	newBeta := stepper.NextBeta(current.LogL, current.Beta, cfg.ThresholdCoV)
	deltaBeta := newBeta - current.Beta

	weights, logZInc, err := kernel.Weights(deltaBeta, current.LogL)
	if err != nil {
		return stageRecord{}, err
	}

	params := rejuvenate.Params{
		NumSteps:             cfg.NumSteps,
		ThinningFactor:       cfg.ThinningFactor,
		AdaptFrequency:       cfg.AdaptFrequency,
		BurnInSteps:          cfg.NumBurnIn,
		TargetAcceptanceRate: targetAcceptanceRate,
		InitialScale:         initialScale,
		Beta:                 current.Beta,
		NewBeta:              newBeta,
		DoThinning:           doThinning,
	}

	result, err := rejuvenate.Run(
		current.Samples, current.LogL, current.LogTarget, weights,
		params,
		wrapLogLikelihood(eval), eval.LogTargetDensity,
		rng, logger,
	)
	if err != nil {
		return stageRecord{}, err
	}

	return stageRecord{
		StageRecord: StageRecord{
			Samples:   result.Samples,
			LogL:      result.LogL,
			LogTarget: result.LogTarget,
			Beta:      newBeta,
			LogZInc:   logZInc,
		},
		scaleFactor: result.FinalScale,
	}, nil
}

// stageRecord augments StageRecord with the stage's final adaptation scale,
// kept only for logging; it is never carried into the next stage (each
// stage reinitializes its scale to 2.4/sqrt(d)).
type stageRecord struct {
	StageRecord
	scaleFactor float64
}

// wrapLogLikelihood adapts Evaluator.LogLikelihood to rejuvenate's function
// type and wraps any error the evaluator returns with a consistent prefix.
// The row-mode size check is made by rejuvenate.Run.
func wrapLogLikelihood(eval Evaluator) rejuvenate.LogLikelihoodFunc {
	return func(x *mat.Dense) ([]float64, error) {
		vals, err := eval.LogLikelihood(x)
		if err != nil {
			return nil, fmt.Errorf("tmcmc: log-likelihood evaluation failed: %w", err)
		}
		return vals, nil
	}
}
