package pipeline

import "fmt"

// Stage identifies where in the pipeline a fault originated. Every fatal
// error carries its stage so operators never have to guess.
type Stage string

const (
	StageContext  Stage = "context"
	StageOracle   Stage = "oracle"
	StageValidate Stage = "validate"
	StageRecord   Stage = "record"
)

// ConfigError is a configuration problem (e.g. a non-positive SLA target).
// Fatal, surfaced immediately, no record produced.
type ConfigError struct {
	CaseID string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("case %s: configuration error: %v", e.CaseID, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Fault is raised when both classification strategies produced output that
// failed validation. It keeps the last raw verdict for diagnosis. No record
// is written.
type Fault struct {
	CaseID  string
	Stage   Stage
	LastRaw []byte
	Err     error
}

func (e *Fault) Error() string {
	return fmt.Sprintf("case %s: pipeline fault at stage %s: %v", e.CaseID, e.Stage, e.Err)
}

func (e *Fault) Unwrap() error { return e.Err }

// UnpersistedError signals that classification succeeded but the audit append
// failed. The outcome carries the computed verdict so the caller can retry
// the append without paying for another classification.
type UnpersistedError struct {
	CaseID string
	Err    error
}

func (e *UnpersistedError) Error() string {
	return fmt.Sprintf("case %s: decision computed but not persisted: %v", e.CaseID, e.Err)
}

func (e *UnpersistedError) Unwrap() error { return e.Err }
