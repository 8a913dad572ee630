package email

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseTemplates(t *testing.T) {
	t.Parallel()

	templates, err := parseTemplates()
	if err != nil {
		t.Fatalf("parseTemplates: %v", err)
	}
	for _, role := range []string{templateDefault, "student", "recruiter", "receipt"} {
		if _, ok := templates[role]; !ok {
			t.Fatalf("missing template %q", role)
		}
	}
}

func TestReceiptTemplateRendersFields(t *testing.T) {
	t.Parallel()

	templates, err := parseTemplates()
	if err != nil {
		t.Fatalf("parseTemplates: %v", err)
	}

	var body bytes.Buffer
	err = templates["receipt"].Execute(&body, map[string]string{
		"first_name": "Asha",
		"plan_type":  "premium",
		"end_date":   "2026-09-30",
		"payment_id": "pay_001",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"Asha", "premium", "2026-09-30", "pay_001"} {
		if !strings.Contains(body.String(), want) {
			t.Fatalf("rendered receipt missing %q:\n%s", want, body.String())
		}
	}
}

func TestTemplatesEscapeHTML(t *testing.T) {
	t.Parallel()

	templates, err := parseTemplates()
	if err != nil {
		t.Fatalf("parseTemplates: %v", err)
	}

	var body bytes.Buffer
	err = templates[templateDefault].Execute(&body, map[string]string{
		"first_name": `<script>alert("x")</script>`,
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if strings.Contains(body.String(), "<script>") {
		t.Fatalf("template did not escape injected markup:\n%s", body.String())
	}
}
