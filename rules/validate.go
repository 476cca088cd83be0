package rules

const (
	valueStateSuffix     = "ValueState"
	valueStateTextSuffix = "ValueStateText"
)

// Validate evaluates every rule against the record and aggregates the outcomes.
// All rules are evaluated even after a failure so the report is always complete.
// When several rules name the same field the first failing outcome is kept.
func Validate(rs []Rule, rec Record) ValidationReport {
	report := ValidationReport{
		Fields: make(map[string]FieldOutcome, len(rs)),
		Valid:  true,
	}

	for _, r := range rs {
		outcome := Evaluate(r, rec[r.FieldName])
		if prev, seen := report.Fields[r.FieldName]; seen && !prev.OK() {
			continue
		}
		report.Fields[r.FieldName] = outcome
	}

	for _, outcome := range report.Fields {
		if !outcome.OK() {
			report.Valid = false
			break
		}
	}
	return report
}

// ValidateStrings parses the rule strings and validates the record against them.
// A malformed rule fails the whole call before any field is evaluated.
func ValidateStrings(ruleStrings []string, rec Record) (ValidationReport, error) {
	rs, err := ParseAll(ruleStrings)
	if err != nil {
		return ValidationReport{}, err
	}
	return Validate(rs, rec), nil
}

// BindValueStates returns a copy of the record extended with
// <field>ValueState and <field>ValueStateText entries for every reported field,
// the layout a UI5 JSONModel bound to input valueState properties expects.
func BindValueStates(rec Record, report ValidationReport) map[string]any {
	out := make(map[string]any, len(rec)+2*len(report.Fields))
	for k, v := range rec {
		out[k] = v
	}
	for name, outcome := range report.Fields {
		out[name+valueStateSuffix] = string(outcome.State)
		out[name+valueStateTextSuffix] = outcome.Message
	}
	return out
}
