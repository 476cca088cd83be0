package rules

import (
	"encoding/json"
	"math"
	"testing"
)

func mustParse(t *testing.T, s string) Rule {
	t.Helper()
	r, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", s, err)
	}
	return r
}

func TestEvaluateRequired(t *testing.T) {
	withMessage := mustParse(t, "name|req|null|null|Name required")
	fallback := mustParse(t, "name|req|null|null|")

	for _, value := range []any{nil, "", 0, 0.0, int64(0), json.Number("0"), false, math.NaN()} {
		got := Evaluate(withMessage, value)
		if got.State != StateError || got.Message != "Name required" {
			t.Errorf("Evaluate(req, %#v) = %+v, want Error with custom message", value, got)
		}

		got = Evaluate(fallback, value)
		if got.State != StateError || got.Message != RequiredFallback {
			t.Errorf("Evaluate(req no message, %#v) = %+v, want %q", value, got, RequiredFallback)
		}
	}

	for _, value := range []any{"John", "0", " ", 1, -3.5, true} {
		if got := Evaluate(withMessage, value); !got.OK() {
			t.Errorf("Evaluate(req, %#v) = %+v, want None", value, got)
		}
	}
}

func TestEvaluateOptionalMissingValue(t *testing.T) {
	r := mustParse(t, "nickname|opt|5|null|ignored")
	for _, value := range []any{nil, "", 0} {
		if got := Evaluate(r, value); !got.OK() {
			t.Errorf("Evaluate(optional, %#v) = %+v, want None", value, got)
		}
	}
}

func TestEvaluateMaxLength(t *testing.T) {
	r := mustParse(t, "code|req|4|null|")

	tests := []struct {
		value any
		ok    bool
	}{
		{"abcd", true},
		{"abcde", false},
		{"äöüß", true},
		{1234, true},
		{12345, false},
		{12.5, true},
		{123.45, false},
		{true, true},
		{1e-7, true},
		{1.5e-7, false},
	}

	for _, tt := range tests {
		got := Evaluate(r, tt.value)
		if got.OK() != tt.ok {
			t.Errorf("Evaluate(max 4, %#v) = %+v, want ok=%v", tt.value, got, tt.ok)
		}
		if !tt.ok && got.Message != "Max length for code is 4" {
			t.Errorf("length message = %q", got.Message)
		}
	}
}

func TestEvaluateMaxLengthZero(t *testing.T) {
	r := mustParse(t, "empty|opt|0|null|")
	if got := Evaluate(r, "x"); got.OK() || got.Message != "Max length for empty is 0" {
		t.Errorf("Evaluate(max 0, x) = %+v", got)
	}
	if got := Evaluate(r, ""); !got.OK() {
		t.Errorf("Evaluate(max 0, empty) = %+v, want None", got)
	}
}

func TestEvaluateNumeric(t *testing.T) {
	r := mustParse(t, "age|opt|null|num|")

	valid := []any{"42", "-3.5", " 7 ", "1e3", ".5", "0x1F", "0b101", "", 42, 3.14, json.Number("12"), true}
	for _, value := range valid {
		if got := Evaluate(r, value); !got.OK() {
			t.Errorf("Evaluate(num, %#v) = %+v, want None", value, got)
		}
	}

	invalid := []any{"abc", "42abc", "1_000", "Infinity", "NaN", "1e400", "0x", "--1", nil, math.Inf(1)}
	for _, value := range invalid {
		got := Evaluate(r, value)
		if got.OK() {
			t.Errorf("Evaluate(num, %#v) = None, want Error", value)
			continue
		}
		if got.Message != "age must be a number" {
			t.Errorf("numeric message = %q", got.Message)
		}
	}
}

func TestEvaluateAlphabetic(t *testing.T) {
	r := mustParse(t, "name|opt|null|str|")

	valid := []any{"John", "John Smith", "", "  ", "Mary\tAnn", nil}
	for _, value := range valid {
		if got := Evaluate(r, value); !got.OK() {
			t.Errorf("Evaluate(str, %#v) = %+v, want None", value, got)
		}
	}

	invalid := []any{"John123", "O'Brien", "Zoë", "hello!", 42}
	for _, value := range invalid {
		got := Evaluate(r, value)
		if got.OK() {
			t.Errorf("Evaluate(str, %#v) = None, want Error", value)
			continue
		}
		if got.Message != "name must contain only letters" {
			t.Errorf("alphabetic message = %q", got.Message)
		}
	}
}

func TestEvaluatePrecedence(t *testing.T) {
	tests := []struct {
		name  string
		rule  string
		value any
		want  FieldOutcome
	}{
		{
			name:  "required masks type",
			rule:  "age|req|null|num|Age required",
			value: "",
			want:  FieldOutcome{State: StateError, Message: "Age required"},
		},
		{
			name:  "length masks type",
			rule:  "name|req|3|str|",
			value: "ab12",
			want:  FieldOutcome{State: StateError, Message: "Max length for name is 3"},
		},
		{
			name:  "type after length passes",
			rule:  "name|req|4|str|",
			value: "ab12",
			want:  FieldOutcome{State: StateError, Message: "name must contain only letters"},
		},
		{
			name:  "all pass",
			rule:  "name|req|4|str|",
			value: "abcd",
			want:  FieldOutcome{State: StateNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(mustParse(t, tt.rule), tt.value)
			if got != tt.want {
				t.Errorf("Evaluate(%q, %#v) = %+v, want %+v", tt.rule, tt.value, got, tt.want)
			}
		})
	}
}

func TestEvaluateNoneHasEmptyMessage(t *testing.T) {
	got := Evaluate(mustParse(t, "x|req|null|null|never shown"), "value")
	if got.State != StateNone || got.Message != "" {
		t.Errorf("passing outcome = %+v, want empty message", got)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{42, "42"},
		{int64(-7), "-7"},
		{1.5, "1.5"},
		{100.0, "100"},
		{1e21, "1e+21"},
		{1.5e300, "1.5e+300"},
		{1e-7, "1e-7"},
		{-2.5e-10, "-2.5e-10"},
		{0.000001, "0.000001"},
		{true, "true"},
		{json.Number("3.10"), "3.10"},
	}
	for _, tt := range tests {
		if got := stringify(tt.in); got != tt.want {
			t.Errorf("stringify(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
