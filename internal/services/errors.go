package services

import (
	"errors"
	"fmt"
)

// errKind tags pipeline failures for the logs. The wire contract stays
// a single uniform failure envelope, so the kind is the only place the
// taxonomy survives to an observability sink.
type errKind string

const (
	kindValidation   errKind = "validation"
	kindFetch        errKind = "fetch"
	kindAuthExchange errKind = "auth_exchange"
	kindVisionAPI    errKind = "vision_api"
	kindPersistence  errKind = "persistence"
	kindLLM          errKind = "llm"
)

type pipelineError struct {
	kind errKind
	err  error
}

func (e *pipelineError) Error() string { return e.err.Error() }
func (e *pipelineError) Unwrap() error { return e.err }

func kindError(kind errKind, format string, args ...any) error {
	return &pipelineError{kind: kind, err: fmt.Errorf(format, args...)}
}

// kindOf extracts the kind tag from an error chain, defaulting to
// "internal" for anything untagged.
func kindOf(err error) string {
	var pe *pipelineError
	if errors.As(err, &pe) {
		return string(pe.kind)
	}
	return "internal"
}
