package dimension

import "testing"

func TestConvert(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    string
		outcome Outcome
	}{
		{"round trip precision", "25.40", "1.00", Converted},
		{"default precision", "10", "0.3937", Converted},
		{"tolerance preserved", "10+0.5", "0.3937+0.5", Converted},
		{"one decimal digit", "50.0", "2.0", Converted},
		{"plain integer", "50", "1.9685", Converted},
		{"degree skip", "45°", "45°", SkippedDegree},
		{"callout skip", "4x10", "4x10", SkippedCallout},
		{"callout skip uppercase", "4X10", "4X10", SkippedCallout},
		{"double decimal", "12.5.6", "12.5.6", SkippedParse},
		{"zero stays zero", "0.0", "0.0", Converted},
		{"plus tolerance chain", "10+0.5+0.1", "0.3937+0.5+0.1", Converted},
		{"minus tolerance", "10.0-0.2", "0.4-0.2", Converted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome := Convert(tt.token)
			if got != tt.want {
				t.Errorf("Convert(%q) = %q, want %q", tt.token, got, tt.want)
			}
			if outcome != tt.outcome {
				t.Errorf("Convert(%q) outcome = %v, want %v", tt.token, outcome, tt.outcome)
			}
		})
	}
}

// A leading sign is consumed as the tolerance delimiter, leaving an
// empty base that fails parsing. The token survives unchanged, which is
// the inherited behavior and deliberate.
func TestConvertLeadingSignAmbiguity(t *testing.T) {
	for _, token := range []string{"-5", "-5-0.2", "+5"} {
		got, outcome := Convert(token)
		if got != token {
			t.Errorf("Convert(%q) = %q, want unchanged", token, got)
		}
		if outcome != SkippedParse {
			t.Errorf("Convert(%q) outcome = %v, want %v", token, outcome, SkippedParse)
		}
	}
}

func TestSplitTolerance(t *testing.T) {
	tests := []struct {
		token, base, tol string
	}{
		{"10+0.5", "10", "+0.5"},
		{"10-0.5", "10", "-0.5"},
		{"10", "10", ""},
		{"10+0.5-0.3", "10", "+0.5-0.3"},
		{"-5-0.2", "", "-5-0.2"},
	}
	for _, tt := range tests {
		base, tol := SplitTolerance(tt.token)
		if base != tt.base || tol != tt.tol {
			t.Errorf("SplitTolerance(%q) = (%q, %q), want (%q, %q)",
				tt.token, base, tol, tt.base, tt.tol)
		}
	}
}

func TestPrecision(t *testing.T) {
	tests := []struct {
		base string
		want int
	}{
		{"25.40", 2},
		{"50.0", 1},
		{"10", 4},
		{"0.123", 3},
	}
	for _, tt := range tests {
		if got := Precision(tt.base); got != tt.want {
			t.Errorf("Precision(%q) = %d, want %d", tt.base, got, tt.want)
		}
	}
}

func TestConvertValueUnits(t *testing.T) {
	got, err := ConvertValue("2.54", "cm", 2)
	if err != nil {
		t.Fatal(err)
	}
	if got != "1.00" {
		t.Errorf("cm conversion = %q, want %q", got, "1.00")
	}
	if _, err := ConvertValue("abc", "mm", 2); err == nil {
		t.Error("expected parse error")
	}
}

func TestIsCandidate(t *testing.T) {
	valid := []string{"25.4", "10+0.5", "-5", "+5", ".5", "10-0.2", "-5-0.2"}
	for _, s := range valid {
		if !IsCandidate(s) {
			t.Errorf("IsCandidate(%q) = false, want true", s)
		}
	}
	invalid := []string{"", "4x10", "45°", "12.5.6", "10+0.5+0.1", "10+", "."}
	for _, s := range invalid {
		if IsCandidate(s) {
			t.Errorf("IsCandidate(%q) = true, want false", s)
		}
	}
}
