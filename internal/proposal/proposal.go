// Package proposal builds the scaled Gaussian random-walk proposal used to
// rejuvenate a TMCMC population: a weighted sample covariance matrix and its
// Cholesky factor. Grounded directly in gonum/stat's CovarianceMatrix (fed
// rescaled weights so that they act as per-row aweights) and gonum/mat's
// Cholesky type.
package proposal

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NonPDCovarianceError reports that the scaled weighted covariance matrix
// failed to factorize, i.e. the weighted sample cloud does not span enough
// dimensions to be positive definite.
type NonPDCovarianceError struct {
	Dim int
}

func (e *NonPDCovarianceError) Error() string {
	return fmt.Sprintf("proposal: cholesky decomposition failed for %d-dimensional covariance (not positive definite)", e.Dim)
}

// Build computes Sigma = scale^2 * Cov_w(samples) (weights as aweights) and
// its lower-triangular Cholesky factor L, with L*L^T = Sigma.
//
// samples is N-by-d (one row per sample); weights has length N and sums to
// 1. Build returns a *NonPDCovarianceError if Sigma is not positive definite.
func Build(samples *mat.Dense, weights []float64, scale float64) (sigma *mat.SymDense, chol *mat.Cholesky, err error) {
	_, d := samples.Dims()

	// stat.CovarianceMatrix normalizes by sum(w)-1, which is zero for
	// weights that sum to 1. Rescaling every weight by sum(w)/sum(w^2)
	// leaves the weighted mean unchanged and turns that normalization into
	// the aweights one, sum(w) - sum(w^2)/sum(w).
	var sum, sumSq float64
	for _, w := range weights {
		sum += w
		sumSq += w * w
	}
	aweights := make([]float64, len(weights))
	for i, w := range weights {
		aweights[i] = w * sum / sumSq
	}

	var cov mat.SymDense
	stat.CovarianceMatrix(&cov, samples, aweights)

	sigma = mat.NewSymDense(d, nil)
	sigma.ScaleSym(scale*scale, &cov)

	chol = &mat.Cholesky{}
	if ok := chol.Factorize(sigma); !ok {
		return nil, nil, &NonPDCovarianceError{Dim: d}
	}
	return sigma, chol, nil
}

// LowerTriangular extracts the lower-triangular factor L from a factorized
// Cholesky decomposition, ready to multiply a standard-normal draw to form a
// proposal step: x* = current + L*z.
func LowerTriangular(chol *mat.Cholesky) *mat.TriDense {
	var l mat.TriDense
	chol.LTo(&l)
	return &l
}
