package tmcmc

import "gonum.org/v1/gonum/mat"

// gaussianEvaluator implements Evaluator for an isotropic Gaussian
// log-likelihood centered at Mean, used across the package tests.
type gaussianEvaluator struct {
	Mean float64
}

func (g gaussianEvaluator) LogLikelihood(x *mat.Dense) ([]float64, error) {
	n, d := x.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < d; j++ {
			diff := x.At(i, j) - g.Mean
			sum += diff * diff
		}
		out[i] = -0.5 * sum
	}
	return out, nil
}

func (gaussianEvaluator) LogTargetDensity(x []float64, logL float64) (float64, error) {
	return logL, nil
}
