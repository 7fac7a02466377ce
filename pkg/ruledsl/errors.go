package ruledsl

import (
	"errors"
	"fmt"
)

// Reason identifies why a rule text was rejected.
type Reason string

const (
	ReasonMissingName           Reason = "missing-name"
	ReasonMissingSeverity       Reason = "missing-severity"
	ReasonUnsupportedCondition  Reason = "unsupported-condition"
	ReasonMissingPredicateBlock Reason = "missing-predicate-block"
	ReasonMissingOperator       Reason = "missing-operator"
	ReasonThresholdNotNumeric   Reason = "threshold-not-numeric"
)

var reasonMessages = map[Reason]string{
	ReasonMissingName:           `missing rule("name")`,
	ReasonMissingSeverity:       "missing then SEVERITY",
	ReasonUnsupportedCondition:  "unsupported condition",
	ReasonMissingPredicateBlock: "missing predicate block",
	ReasonMissingOperator:       "missing comparison operator",
	ReasonThresholdNotNumeric:   "threshold is not a number",
}

// Reason sentinels for errors.Is. Compile never returns these values
// themselves.
var (
	ErrMissingName           = &SyntaxError{Reason: ReasonMissingName}
	ErrMissingSeverity       = &SyntaxError{Reason: ReasonMissingSeverity}
	ErrUnsupportedCondition  = &SyntaxError{Reason: ReasonUnsupportedCondition}
	ErrMissingPredicateBlock = &SyntaxError{Reason: ReasonMissingPredicateBlock}
	ErrMissingOperator       = &SyntaxError{Reason: ReasonMissingOperator}
	ErrThresholdNotNumeric   = &SyntaxError{Reason: ReasonThresholdNotNumeric}
)

// SyntaxError is the only error Compile returns. Detail narrows the reason
// when more than one check maps to it, e.g. "threshold is not an int".
type SyntaxError struct {
	Reason Reason
	Detail string
}

func (e *SyntaxError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = reasonMessages[e.Reason]
	}
	return fmt.Sprintf("dsl parse error: %s", msg)
}

// Is matches any SyntaxError carrying the same reason, so callers can test
// against the Err* values with errors.Is.
func (e *SyntaxError) Is(target error) bool {
	var other *SyntaxError
	if !errors.As(target, &other) {
		return false
	}
	return e.Reason == other.Reason
}

func syntaxError(reason Reason, detail string) *SyntaxError {
	return &SyntaxError{Reason: reason, Detail: detail}
}
