package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRule matches every *MalformedRuleError via errors.Is
	ErrMalformedRule = errors.New("malformed rule")

	ErrRuleSetNotFound = errors.New("rule set not found")
	ErrRuleSetExists   = errors.New("rule set already exists")
	ErrNotCompiled     = errors.New("rule set is not compiled")

	// ErrInvalidConstraint wraps constraints that do not compile or name a field without a rule
	ErrInvalidConstraint = errors.New("invalid constraint")
)

// MalformedRuleError is returned when a rule string does not follow
// fieldName|requirement|maxLength|typeToken|errorMessage
type MalformedRuleError struct {
	Rule   string
	Reason string
}

func (e *MalformedRuleError) Error() string {
	return fmt.Sprintf("malformed rule %q: %s", e.Rule, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedRule) hold for any MalformedRuleError
func (e *MalformedRuleError) Is(target error) bool {
	return target == ErrMalformedRule
}
