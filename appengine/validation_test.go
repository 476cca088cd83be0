package appengine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liamcoop/ui5helper/rules"
)

func TestValidateAppID(t *testing.T) {
	valid := []string{"com.example.hr", "myapp", "_a.b_c.d1"}
	for _, id := range valid {
		assert.NoError(t, ValidateAppID(id), id)
	}

	invalid := []string{"", "com..example", ".com", "com.example.", "1app", "com.ex-ample", strings.Repeat("a", 256)}
	for _, id := range invalid {
		assert.ErrorIs(t, ValidateAppID(id), ErrInvalidAppID, id)
	}
}

func TestValidateModel_Empty(t *testing.T) {
	err := ValidateModel(Model{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidModel))
	assert.Contains(t, err.Error(), "empty")
}

func TestValidateModel_TooManyFields(t *testing.T) {
	model := Model{}
	for i := 0; i < 201; i++ {
		model[fmt.Sprintf("field%d", i)] = "string"
	}

	err := ValidateModel(model)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "200")
}

func TestValidateModel_FieldNames(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		wantErr bool
	}{
		{"camel case", "empName", false},
		{"underscore", "_hidden", false},
		{"dollar", "$count", false},
		{"leading digit", "1field", true},
		{"dash", "emp-name", true},
		{"space", "emp name", true},
		{"pipe", "emp|name", true},
		{"reserved", "class", true},
		{"too long", strings.Repeat("a", 101), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModel(Model{tt.field: "string"})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateModel_FieldTypes(t *testing.T) {
	for _, typ := range []string{"string", "number", "boolean", "date"} {
		assert.NoError(t, ValidateModel(Model{"f": typ}), typ)
	}
	for _, typ := range []string{"", "int", " string", "String", "object"} {
		assert.Error(t, ValidateModel(Model{"f": typ}), typ)
	}
}

func TestValidateRuleSet(t *testing.T) {
	model := Model{"empName": "string", "age": "number", "active": "boolean"}

	t.Run("valid", func(t *testing.T) {
		set := &rules.RuleSet{Rules: []string{"empName|req|50|str|", "age|req|null|num|"}}
		assert.NoError(t, ValidateRuleSet(model, set))
	})

	t.Run("unknown field", func(t *testing.T) {
		set := &rules.RuleSet{Rules: []string{"salary|req|null|num|"}}
		err := ValidateRuleSet(model, set)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidModel)
		assert.Contains(t, err.Error(), "salary")
	})

	t.Run("numeric boolean", func(t *testing.T) {
		set := &rules.RuleSet{Rules: []string{"active|req|null|num|"}}
		assert.ErrorIs(t, ValidateRuleSet(model, set), ErrInvalidModel)
	})

	t.Run("malformed rule", func(t *testing.T) {
		set := &rules.RuleSet{Rules: []string{"empName|req|50"}}
		assert.ErrorIs(t, ValidateRuleSet(model, set), rules.ErrMalformedRule)
	})
}
