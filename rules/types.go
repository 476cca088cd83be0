package rules

import "time"

// TypeConstraint restricts the shape of a field value
type TypeConstraint int

const (
	TypeNone TypeConstraint = iota
	TypeNumeric
	TypeAlphabetic
)

// String returns the rule string token for the constraint
func (t TypeConstraint) String() string {
	switch t {
	case TypeNumeric:
		return "num"
	case TypeAlphabetic:
		return "str"
	default:
		return "null"
	}
}

// Rule is the decoded form of a single rule string
// Immutable once parsed; produced by Parse and consumed by Evaluate
type Rule struct {
	FieldName    string         `json:"fieldName"`
	Required     bool           `json:"required"`
	MaxLength    *int           `json:"maxLength,omitempty"`
	Type         TypeConstraint `json:"typeConstraint"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// Record maps field names to scalar values (string, number, bool or nil)
type Record map[string]any

// FieldState is the validity state of a single field
type FieldState string

const (
	StateNone  FieldState = "None"
	StateError FieldState = "Error"
)

// FieldOutcome is the validity state and message for one field
type FieldOutcome struct {
	State   FieldState `json:"state"`
	Message string     `json:"message"`
}

// OK reports whether the field passed every check
func (o FieldOutcome) OK() bool {
	return o.State == StateNone
}

// ValidationReport is the outcome of validating one record against a rule list
type ValidationReport struct {
	Fields map[string]FieldOutcome `json:"fields"`
	Valid  bool                    `json:"isValid"`
}

// Errors returns the messages of every failing field keyed by field name
func (r ValidationReport) Errors() map[string]string {
	out := make(map[string]string)
	for name, outcome := range r.Fields {
		if !outcome.OK() {
			out[name] = outcome.Message
		}
	}
	return out
}

// Constraint is a cross-field check expressed in CEL over the `record` variable
// It only runs for a field whose rule checks all passed
type Constraint struct {
	Field      string `json:"field" yaml:"field"`
	Expression string `json:"expression" yaml:"expression"`
	Message    string `json:"message,omitempty" yaml:"message,omitempty"`
}

// RuleSet is a named, stored list of rule strings for one data model
type RuleSet struct {
	ID          string       `json:"id"`
	AppID       string       `json:"appId"`
	Name        string       `json:"name"`
	Model       string       `json:"model"`
	Rules       []string     `json:"rules"`
	Constraints []Constraint `json:"constraints,omitempty"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
