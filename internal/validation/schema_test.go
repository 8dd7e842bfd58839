package validation

import (
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type mapInput map[string]string

func (m mapInput) Fields() map[string]string { return m }

func TestValidate_NilInput_DoesNotPanic(t *testing.T) {
	errs := Validate(LoginSchema, nil)
	want := Errors{
		FieldEmail:    MsgEmailRequired,
		FieldPassword: MsgPasswordRequired,
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_NilFieldsMap_DoesNotPanic(t *testing.T) {
	errs := Validate(LoginSchema, mapInput(nil))
	if errs.Valid() {
		t.Error("expected errors for empty input")
	}
}

func TestValidate_RuleOrderDecidesMessage(t *testing.T) {
	schema := Schema{
		Fields: []FieldRules{
			{Field: "code", Rules: []Rule{
				Required("required"),
				MinLength(3, "too short"),
				Pattern(regexp.MustCompile(`^[A-Z]+$`), "uppercase only"),
			}},
		},
	}

	cases := map[string]string{
		"":     "required",
		"ab":   "too short",
		"abc":  "uppercase only",
		"ABC":  "",
		"ABCD": "",
	}
	for in, want := range cases {
		errs := Validate(schema, mapInput{"code": in})
		if got := errs["code"]; got != want {
			t.Errorf("Validate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate_CustomRule(t *testing.T) {
	schema := Schema{
		Fields: []FieldRules{
			{Field: "n", Rules: []Rule{Custom(func(v string) bool { return v == "ok" }, "not ok")}},
		},
	}
	if errs := Validate(schema, mapInput{"n": "ok"}); !errs.Valid() {
		t.Errorf("expected valid, got %v", errs)
	}
	if errs := Validate(schema, mapInput{"n": "ng"}); errs["n"] != "not ok" {
		t.Errorf("expected custom message, got %v", errs)
	}
}

func TestErrors_FieldPaths_Sorted(t *testing.T) {
	errs := Errors{"password": "x", "email": "y", "name": "z"}
	want := []string{"email", "name", "password"}
	if diff := cmp.Diff(want, errs.FieldPaths()); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}
