package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsNumeric(t *testing.T) {
	valid := []string{"123", "0", "9876543210"}
	invalid := []string{"abc", "123a", "", "-123"}
	for _, s := range valid {
		if !IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsNumeric(s) {
			t.Errorf("IsNumeric(%q) = true, want false", s)
		}
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		input  string
		want   int64
		wantOK bool
	}{
		{"12", 12, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseID(c.input)
		if got != c.want || ok != c.wantOK {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", c.input, got, ok, c.want, c.wantOK)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "period", Message: "must be YYYY-MM"},
		{Field: "employee_id", Message: "must be a positive integer"},
	}
	if got := errs.Error(); got != "period: must be YYYY-MM; employee_id: must be a positive integer" {
		t.Errorf("Error() = %q", got)
	}
	m := errs.ToMap()
	if m["period"] != "must be YYYY-MM" || len(m) != 2 {
		t.Errorf("ToMap() = %v", m)
	}
}
