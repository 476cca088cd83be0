package rules

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func intPtr(n int) *int { return &n }

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Rule
	}{
		{
			name: "full rule",
			in:   "name|req|50|str|Name required",
			want: Rule{FieldName: "name", Required: true, MaxLength: intPtr(50), Type: TypeAlphabetic, ErrorMessage: "Name required"},
		},
		{
			name: "all sentinels",
			in:   "age|opt|null|null|",
			want: Rule{FieldName: "age"},
		},
		{
			name: "numeric with message",
			in:   "age|req|null|num|Age required",
			want: Rule{FieldName: "age", Required: true, Type: TypeNumeric, ErrorMessage: "Age required"},
		},
		{
			name: "only req means required",
			in:   "code|REQ|0|null|x",
			want: Rule{FieldName: "code", MaxLength: intPtr(0), ErrorMessage: "x"},
		},
		{
			name: "leading zeros",
			in:   "zip|req|007|num|",
			want: Rule{FieldName: "zip", Required: true, MaxLength: intPtr(7), Type: TypeNumeric},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.in, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"four tokens", "name|req|50|str"},
		{"six tokens", "name|req|50|str|msg|extra"},
		{"empty string", ""},
		{"negative max length", "name|req|-1|str|msg"},
		{"non numeric max length", "name|req|ten|str|msg"},
		{"blank max length", "name|req||str|msg"},
		{"unknown type token", "name|req|50|text|msg"},
		{"uppercase type token", "name|req|50|NUM|msg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got nil", tt.in)
			}
			if !errors.Is(err, ErrMalformedRule) {
				t.Errorf("Parse(%q) error should match ErrMalformedRule, got %v", tt.in, err)
			}
			var mre *MalformedRuleError
			if !errors.As(err, &mre) {
				t.Fatalf("Parse(%q) error should be *MalformedRuleError, got %T", tt.in, err)
			}
			if mre.Rule != tt.in {
				t.Errorf("MalformedRuleError.Rule = %q, want %q", mre.Rule, tt.in)
			}
		})
	}
}

func TestParseAllFailsFast(t *testing.T) {
	_, err := ParseAll([]string{
		"age|req|null|num|Age required",
		"name|req|50|str",
		"city|req|null|bogus|",
	})
	if err == nil {
		t.Fatal("ParseAll should fail on the second rule")
	}
	if !errors.Is(err, ErrMalformedRule) {
		t.Errorf("expected ErrMalformedRule, got %v", err)
	}
	var mre *MalformedRuleError
	if errors.As(err, &mre) && mre.Rule != "name|req|50|str" {
		t.Errorf("first malformed rule should be reported, got %q", mre.Rule)
	}
}

func TestParseAllKeepsOrder(t *testing.T) {
	got, err := ParseAll([]string{"b|req|null|null|", "a|opt|null|null|"})
	if err != nil {
		t.Fatalf("ParseAll failed: %v", err)
	}
	if len(got) != 2 || got[0].FieldName != "b" || got[1].FieldName != "a" {
		t.Errorf("ParseAll order = %+v", got)
	}
}

func TestRuleStringRoundTrip(t *testing.T) {
	for _, s := range []string{
		"name|req|50|str|Name required",
		"age|req|null|num|Age required",
		"note|opt|null|null|",
	} {
		r, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", s, err)
		}
		if got := r.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
		again, err := Parse(r.String())
		if err != nil {
			t.Fatalf("Parse(String()) failed: %v", err)
		}
		if diff := cmp.Diff(r, again); diff != "" {
			t.Errorf("round trip mismatch (-first +second):\n%s", diff)
		}
	}
}
