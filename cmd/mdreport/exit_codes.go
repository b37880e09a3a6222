package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/alnah/go-mdreport"
	"github.com/alnah/go-mdreport/internal/config"
	"github.com/alnah/go-mdreport/internal/hints"
)

// Exit codes for the mdreport CLI: 0 on success, 1 when the input is
// missing or conversion fails, 2 for invalid flags or configuration.
const (
	ExitSuccess = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ErrUsage marks errors caused by the command line itself.
var ErrUsage = errors.New("usage error")

func usageError(err error) error {
	return fmt.Errorf("%w: %v", ErrUsage, err)
}

// exitCodeFor returns the exit code for an error.
// It uses errors.Is, so callers must wrap with fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrUsage) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, mdreport.ErrInvalidEngine) {
		return ExitUsage
	}

	return ExitFailure
}

// hintFor returns the actionable hint appended to an error, if any.
func hintFor(err error, inputPath string, searched []string, getenv func(string) string) string {
	switch {
	case errors.Is(err, mdreport.ErrInputNotFound):
		return hints.ForInputNotFound(inputPath)
	case errors.Is(err, mdreport.ErrBrowserConnect):
		inContainer, _ := isContainer(getenv)
		return hints.ForBrowserConnect(getenv, inContainer)
	case errors.Is(err, mdreport.ErrPageLoad), errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, mdreport.ErrWritePDF):
		return hints.ForOutputDirectory()
	case errors.Is(err, mdreport.ErrInvalidEngine):
		return hints.ForInvalidEngine(mdreport.Engines())
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(searched)
	}
	return ""
}
