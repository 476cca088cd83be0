package appengine

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/liamcoop/ui5helper/rules"
)

const (
	maxModelFields   = 200
	maxIdentifierLen = 100
)

var (
	identifierPattern = regexp.MustCompile(`^[a-zA-Z_$][a-zA-Z0-9_$]*$`)
	appIDPattern      = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`)
)

var (
	// ErrInvalidModel wraps every model and rule set validation failure
	ErrInvalidModel = errors.New("invalid model")
	ErrInvalidAppID = errors.New("invalid app id")
)

// ValidateAppID checks a UI5 application id such as "com.example.hr"
func ValidateAppID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: cannot be empty", ErrInvalidAppID)
	}
	if len(id) > 255 {
		return fmt.Errorf("%w: length %d exceeds maximum of 255 characters", ErrInvalidAppID, len(id))
	}
	if !appIDPattern.MatchString(id) {
		return fmt.Errorf("%w: %q must be dot-separated identifiers (e.g. com.example.app)", ErrInvalidAppID, id)
	}
	return nil
}

// ValidateModel validates a data model definition
func ValidateModel(model Model) error {
	if len(model) == 0 {
		return fmt.Errorf("%w: model cannot be empty, must contain at least one field", ErrInvalidModel)
	}
	if len(model) > maxModelFields {
		return fmt.Errorf("%w: model contains %d fields, maximum allowed is %d", ErrInvalidModel, len(model), maxModelFields)
	}

	for fieldName, typeName := range model {
		if err := validateIdentifier(fieldName); err != nil {
			return fmt.Errorf("%w: invalid field name %q: %v", ErrInvalidModel, fieldName, err)
		}
		if strings.TrimSpace(typeName) != typeName || typeName == "" {
			return fmt.Errorf("%w: field %q has empty or padded type %q", ErrInvalidModel, fieldName, typeName)
		}
		if !isValidFieldType(typeName) {
			return fmt.Errorf("%w: field %q has invalid type %q (must be one of: string, number, boolean, date)", ErrInvalidModel, fieldName, typeName)
		}
	}

	return nil
}

// ValidateRuleSet checks that every rule of the set parses and names a field of the model.
// A numeric rule on a boolean field is rejected as it can never describe user input.
func ValidateRuleSet(model Model, set *rules.RuleSet) error {
	parsed, err := rules.ParseAll(set.Rules)
	if err != nil {
		return err
	}

	for _, r := range parsed {
		typeName, ok := model[r.FieldName]
		if !ok {
			return fmt.Errorf("%w: rule for %q references a field missing from the model", ErrInvalidModel, r.FieldName)
		}
		if r.Type == rules.TypeNumeric && typeName == "boolean" {
			return fmt.Errorf("%w: field %q is boolean but its rule requires a number", ErrInvalidModel, r.FieldName)
		}
	}
	return nil
}

// validateIdentifier checks a field name can be used as a JSON model property
// and inside generated JavaScript
func validateIdentifier(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > maxIdentifierLen {
		return fmt.Errorf("identifier length %d exceeds maximum of %d characters", len(name), maxIdentifierLen)
	}
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("must match pattern %s", identifierPattern.String())
	}
	if reservedKeywords[name] {
		return fmt.Errorf("cannot use reserved keyword %q as identifier", name)
	}
	return nil
}

func isValidFieldType(typeName string) bool {
	switch typeName {
	case "string", "number", "boolean", "date":
		return true
	}
	return false
}

// JavaScript reserved words; generated controllers reference fields by name
var reservedKeywords = map[string]bool{
	"true": true, "false": true, "null": true, "undefined": true,
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"break": true, "continue": true, "return": true, "switch": true, "case": true, "default": true,
	"var": true, "let": true, "const": true, "function": true, "class": true,
	"new": true, "delete": true, "typeof": true, "instanceof": true, "void": true,
	"in": true, "import": true, "export": true, "this": true, "super": true,
	"try": true, "catch": true, "finally": true, "throw": true, "with": true, "yield": true,
}
