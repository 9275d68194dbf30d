package tmcmc

import (
	"context"
	"errors"
	"math"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func initialGaussianPopulation(n, d int, mean float64, seed uint64) (StageRecord, *rand.Rand) {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n*d)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	samples := mat.NewDense(n, d, data)

	eval := gaussianEvaluator{Mean: mean}
	logL, _ := eval.LogLikelihood(samples)
	logPi := append([]float64(nil), logL...)

	return StageRecord{
		Samples:   samples,
		LogL:      logL,
		LogTarget: logPi,
		Beta:      0,
		LogZInc:   0,
	}, rng
}

func TestRunConvergesToPosteriorMean(t *testing.T) {
	const (
		n    = 300
		d    = 2
		mean = 10.0
	)
	initial, rng := initialGaussianPopulation(n, d, mean, 42)
	eval := gaussianEvaluator{Mean: mean}

	run, err := Sample(context.Background(), initial, eval, rng, DefaultConfig, nil)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}

	final := run.Final()
	if final.Beta != 1 {
		t.Fatalf("final beta = %v, want 1", final.Beta)
	}

	nFinal, dFinal := final.Samples.Dims()
	if nFinal != n || dFinal != d {
		t.Fatalf("final samples shape = (%d,%d), want (%d,%d)", nFinal, dFinal, n, d)
	}

	for j := 0; j < d; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += final.Samples.At(i, j)
		}
		got := sum / float64(n)
		if math.Abs(got-mean) > 1.5 {
			t.Errorf("column %d mean = %v, want close to %v", j, got, mean)
		}
	}
}

func TestRunBetaMonotonic(t *testing.T) {
	initial, rng := initialGaussianPopulation(100, 2, 5, 7)
	run, err := Sample(context.Background(), initial, gaussianEvaluator{Mean: 5}, rng, DefaultConfig, nil)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	for i := 1; i < len(run); i++ {
		if run[i].Beta < run[i-1].Beta {
			t.Fatalf("beta decreased at stage %d: %v -> %v", i, run[i-1].Beta, run[i].Beta)
		}
	}
	if run.Final().Beta != 1 {
		t.Fatalf("final beta = %v, want 1", run.Final().Beta)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	initial, rng := initialGaussianPopulation(20, 2, 0, 1)
	cfg := DefaultConfig
	cfg.ThresholdCoV = -1
	_, err := Sample(context.Background(), initial, gaussianEvaluator{}, rng, cfg, nil)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *ConfigError", err)
	}
}

// invalidSizeEvaluator violates the row-mode single-value contract.
type invalidSizeEvaluator struct{}

func (invalidSizeEvaluator) LogLikelihood(x *mat.Dense) ([]float64, error) {
	n, _ := x.Dims()
	if n == 1 {
		return []float64{0, 0}, nil
	}
	out := make([]float64, n)
	return out, nil
}

func (invalidSizeEvaluator) LogTargetDensity(x []float64, logL float64) (float64, error) {
	return logL, nil
}

func TestRunInvalidEvaluatorOutput(t *testing.T) {
	initial, rng := initialGaussianPopulation(20, 2, 0, 3)
	initial.LogL[0] = 0 // every stage rejuvenates, even one whose beta jumps straight to 1
	_, err := Sample(context.Background(), initial, invalidSizeEvaluator{}, rng, DefaultConfig, nil)
	var sizeErr *InvalidEvaluatorOutputError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("err = %v, want *InvalidEvaluatorOutputError", err)
	}
	if sizeErr.Size != 2 {
		t.Fatalf("Size = %d, want 2", sizeErr.Size)
	}
	if sizeErr.Error() != "expected a single value, but got 2 values" {
		t.Fatalf("Error() = %q", sizeErr.Error())
	}
}

func TestRunNonPDCovarianceGuard(t *testing.T) {
	// A single-sample population has zero variance in every direction:
	// the proposal covariance is the zero matrix, not positive definite.
	rng := rand.New(rand.NewSource(9))
	samples := mat.NewDense(1, 2, []float64{1, 1})
	eval := gaussianEvaluator{Mean: 0}
	logL, _ := eval.LogLikelihood(samples)
	initial := StageRecord{Samples: samples, LogL: logL, LogTarget: append([]float64(nil), logL...)}

	_, err := Sample(context.Background(), initial, eval, rng, DefaultConfig, nil)
	var pdErr *NonPDCovarianceError
	if !errors.As(err, &pdErr) {
		t.Fatalf("err = %v, want *NonPDCovarianceError", err)
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	initial, rng := initialGaussianPopulation(50, 2, 3, 11)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sample(ctx, initial, gaussianEvaluator{Mean: 3}, rng, DefaultConfig, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
