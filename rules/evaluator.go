package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// RequiredFallback is the message used when a required rule carries no message
const RequiredFallback = "Required Field"

// letters and whitespace only, empty allowed
var alphabetic = regexp.MustCompile(`^[a-zA-Z\s\v\p{Zs}\x{FEFF}\x{2028}\x{2029}]*$`)

// Evaluate applies a rule to one value. A nil value means the field is absent.
// Checks run in order (required, max length, type) and the first failure
// decides the outcome.
func Evaluate(r Rule, value any) FieldOutcome {
	if r.Required && isMissing(value) {
		msg := r.ErrorMessage
		if msg == "" {
			msg = RequiredFallback
		}
		return failed(msg)
	}

	if r.MaxLength != nil && !isMissing(value) {
		if utf8.RuneCountInString(stringify(value)) > *r.MaxLength {
			return failed(fmt.Sprintf("Max length for %s is %d", r.FieldName, *r.MaxLength))
		}
	}

	switch r.Type {
	case TypeNumeric:
		if !isFiniteNumber(value) {
			return failed(fmt.Sprintf("%s must be a number", r.FieldName))
		}
	case TypeAlphabetic:
		if !alphabetic.MatchString(stringify(value)) {
			return failed(fmt.Sprintf("%s must contain only letters", r.FieldName))
		}
	}

	return FieldOutcome{State: StateNone}
}

func failed(msg string) FieldOutcome {
	return FieldOutcome{State: StateError, Message: msg}
}

// isMissing treats nil, "", false, 0 and NaN as unset
func isMissing(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	}
	if f, ok := toFloat(v); ok {
		return f == 0 || math.IsNaN(f)
	}
	return false
}

// toFloat converts numeric kinds; json.Number is parsed
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN(), true
		}
		return f, true
	}
	return 0, false
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case fmt.Stringer:
		return x.String()
	}
	if f, ok := toFloat(v); ok {
		return formatNumber(f)
	}
	return fmt.Sprint(v)
}

// formatNumber renders a float the way JavaScript String(number) does
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		// browsers print the exponent without padding: 1e-7, not 1e-07
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mantissa, exp, _ := strings.Cut(s, "e")
		sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
		return mantissa + "e" + sign + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isFiniteNumber(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return true
	case string:
		return parsesAsFiniteNumber(x)
	}
	if f, ok := toFloat(v); ok {
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	}
	return parsesAsFiniteNumber(stringify(v))
}

// parsesAsFiniteNumber follows browser Number() coercion: surrounding
// whitespace is ignored, blank means 0, 0x/0o/0b prefixes are integers.
func parsesAsFiniteNumber(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	if strings.ContainsRune(t, '_') {
		return false
	}

	if len(t) > 2 && t[0] == '0' {
		base := 0
		switch t[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			_, err := strconv.ParseUint(t[2:], base, 64)
			return err == nil || errors.Is(err, strconv.ErrRange)
		}
	}

	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
