package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("required", nil); msg != "required property missing" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	defer SetLanguage("en")
	if msg := T("required", nil); msg == "required property missing" {
		t.Fatalf("expected japanese message, got %q", msg)
	}
}

func TestTranslator_Interpolation(t *testing.T) {
	got := T("unsupported_value", map[string]string{"field": "color gradient", "value": "rainbow"})
	if got != "unsupported color gradient 'rainbow'." {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := T("invalid_type", map[string]string{"expected": "number"}); got != "invalid type, expected number" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := T("invalid_type", nil); got != "invalid type" {
		t.Fatalf("missing placeholder should be trimmed, got %q", got)
	}
}

func TestTranslator_UnknownCodeAndLanguage(t *testing.T) {
	if got := T("no_such_code", nil); got != "no_such_code" {
		t.Fatalf("unknown code should echo, got %q", got)
	}
	SetLanguage("fr")
	if got := T("truncated", nil); got != "truncated" {
		t.Fatalf("unknown language should fall back to en, got %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(upper{})
	if got := T("required", nil); got != "X:required" {
		t.Fatalf("custom translator not used: %q", got)
	}
	SetTranslator(nil)
	if got := T("required", nil); got != "required property missing" {
		t.Fatalf("nil should restore en, got %q", got)
	}
}

func TestTranslator_NumberRangeIsNotArity(t *testing.T) {
	if got := T("too_big.number", map[string]string{"max": "10"}); got != "number too large, expected at most 10" {
		t.Fatalf("unexpected message: %q", got)
	}
	if got := T("too_big", map[string]string{"max": "10"}); got != "too many items, expected at most 10" {
		t.Fatalf("unexpected message: %q", got)
	}
}
