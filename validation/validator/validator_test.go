package validator

import "testing"

func TestIsRelatedArea(t *testing.T) {
	for _, area := range RelatedAreas() {
		if !IsRelatedArea(area) {
			t.Errorf("IsRelatedArea(%q) = false", area)
		}
	}
	for _, s := range []string{"", "Finance", "finance ", "hr"} {
		if IsRelatedArea(s) {
			t.Errorf("IsRelatedArea(%q) = true", s)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	if !IsEmpty("   ") || !IsEmpty("") {
		t.Error("whitespace not treated as empty")
	}
	if IsEmpty(" x ") {
		t.Error("non-empty string reported empty")
	}
	if !IsNotEmpty("x") || IsNotEmpty("  ") {
		t.Error("IsNotEmpty inconsistent")
	}
}

func TestRegisterCustomRules(t *testing.T) {
	if err := RegisterCustomRules(); err != nil {
		t.Fatalf("RegisterCustomRules: %v", err)
	}
}
