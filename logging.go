package tmcmc

import (
	"io"

	"github.com/sirupsen/logrus"
)

// NewDiscardLogger returns a logrus.Logger whose output goes to io.Discard:
// the default used when Sample is called with a nil logger, so the core stays
// silent unless a caller opts in, matching the discard-sink idiom other
// tools in this ecosystem use for optional diagnostics.
func NewDiscardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
