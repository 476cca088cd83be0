package rules

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// recordVariable is the CEL variable holding the record under validation
const recordVariable = "record"

// constraintCostLimit bounds the work a single constraint expression may do
const constraintCostLimit = 100000

type compiledConstraint struct {
	Constraint
	prog cel.Program
}

// NewConstraintEnv creates the CEL environment constraints are compiled in.
// The record is exposed as a map from field name to a dynamic value.
func NewConstraintEnv() (*cel.Env, error) {
	env, err := cel.NewEnv(
		cel.Variable(recordVariable, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

func compileConstraint(env *cel.Env, c Constraint) (compiledConstraint, error) {
	ast, issues := env.Compile(c.Expression)
	if issues != nil && issues.Err() != nil {
		return compiledConstraint{}, fmt.Errorf("%w: %s: compile error: %v", ErrInvalidConstraint, c.Field, issues.Err())
	}

	prog, err := env.Program(ast, cel.CostLimit(constraintCostLimit))
	if err != nil {
		return compiledConstraint{}, fmt.Errorf("%w: %s: program creation error: %v", ErrInvalidConstraint, c.Field, err)
	}

	return compiledConstraint{Constraint: c, prog: prog}, nil
}

// check evaluates the constraint; anything but a boolean true is a failure
func (c compiledConstraint) check(rec Record) FieldOutcome {
	out, _, err := c.prog.Eval(map[string]any{recordVariable: map[string]any(rec)})
	if err == nil {
		if ok, isBool := out.Value().(bool); isBool && ok {
			return FieldOutcome{State: StateNone}
		}
	}

	msg := c.Message
	if msg == "" {
		msg = fmt.Sprintf("%s is invalid", c.Field)
	}
	return failed(msg)
}
