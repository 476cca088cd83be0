package rules

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	ruleSeparator = "|"
	ruleTokens    = 5

	requiredToken = "req"
	nullToken     = "null"
)

// Parse decodes one rule string into a Rule.
// The string must hold exactly five |-separated tokens:
//
//	fieldName|requirement|maxLength|typeToken|errorMessage
//
// Only "req" marks the field required. maxLength is "null" or a non-negative
// integer, typeToken is one of "null", "num" or "str".
func Parse(s string) (Rule, error) {
	tokens := strings.Split(s, ruleSeparator)
	if len(tokens) != ruleTokens {
		return Rule{}, &MalformedRuleError{
			Rule:   s,
			Reason: fmt.Sprintf("expected %d tokens, got %d", ruleTokens, len(tokens)),
		}
	}

	r := Rule{
		FieldName:    tokens[0],
		Required:     tokens[1] == requiredToken,
		ErrorMessage: tokens[4],
	}

	if tokens[2] != nullToken {
		n, err := strconv.ParseUint(tokens[2], 10, 31)
		if err != nil {
			return Rule{}, &MalformedRuleError{
				Rule:   s,
				Reason: fmt.Sprintf("max length %q is not a non-negative integer", tokens[2]),
			}
		}
		limit := int(n)
		r.MaxLength = &limit
	}

	typ, err := parseTypeToken(tokens[3])
	if err != nil {
		return Rule{}, &MalformedRuleError{Rule: s, Reason: err.Error()}
	}
	r.Type = typ

	return r, nil
}

// ParseAll decodes an ordered list of rule strings, failing on the first malformed one
func ParseAll(ss []string) ([]Rule, error) {
	out := make([]Rule, 0, len(ss))
	for i, s := range ss {
		r, err := Parse(s)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		out = append(out, r)
	}
	return out, nil
}

func parseTypeToken(token string) (TypeConstraint, error) {
	switch token {
	case nullToken:
		return TypeNone, nil
	case "num":
		return TypeNumeric, nil
	case "str":
		return TypeAlphabetic, nil
	default:
		return TypeNone, fmt.Errorf("unknown type token %q (want null, num or str)", token)
	}
}

// String encodes the rule back into its rule string form
func (r Rule) String() string {
	requirement := "opt"
	if r.Required {
		requirement = requiredToken
	}
	maxLength := nullToken
	if r.MaxLength != nil {
		maxLength = strconv.Itoa(*r.MaxLength)
	}
	return strings.Join([]string{r.FieldName, requirement, maxLength, r.Type.String(), r.ErrorMessage}, ruleSeparator)
}
