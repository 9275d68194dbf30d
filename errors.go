package tmcmc

import (
	"fmt"

	"github.com/adbailey/tmcmc/internal/kernel"
	"github.com/adbailey/tmcmc/internal/proposal"
	"github.com/adbailey/tmcmc/internal/rejuvenate"
)

// ErrDegenerateWeights is returned when every log-likelihood in a stage is
// -Inf or NaN, so no finite importance weight can be formed. The stage
// cannot resample and the run aborts.
var ErrDegenerateWeights = kernel.ErrDegenerateWeights

// NonPDCovarianceError reports that the scaled weighted proposal covariance
// failed its Cholesky factorization (not positive definite). This aborts
// the run; no partial stage is appended.
type NonPDCovarianceError = proposal.NonPDCovarianceError

// InvalidEvaluatorOutputError reports that Evaluator.LogLikelihood returned
// a slice of the wrong length for a single-row call.
type InvalidEvaluatorOutputError = rejuvenate.InvalidEvaluatorOutputError

// ConfigError reports that a Config field is out of the range Validate
// requires.
type ConfigError struct {
	Field string
	Value any
	Want  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tmcmc: invalid config field %s = %v: want %s", e.Field, e.Value, e.Want)
}
