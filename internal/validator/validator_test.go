package validator

import "testing"

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("novak@example.com"); err != nil {
		t.Errorf("valid email rejected: %v", err)
	}
	for _, email := range []string{"", "novak", "novak@", "@example.com", "a b@example.com"} {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) accepted", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("novak_99"); err != nil {
		t.Errorf("valid username rejected: %v", err)
	}
	for _, username := range []string{"", "ab", "has space", "tooooooooooooooooooooooooooolong123"} {
		if err := ValidateUsername(username); err == nil {
			t.Errorf("ValidateUsername(%q) accepted", username)
		}
	}
}

func TestValidateCurrency(t *testing.T) {
	if err := ValidateCurrency("CZK"); err != nil {
		t.Errorf("valid code rejected: %v", err)
	}
	for _, code := range []string{"", "czk", "CZ", "CZKX", "12K"} {
		if err := ValidateCurrency(code); err == nil {
			t.Errorf("ValidateCurrency(%q) accepted", code)
		}
	}
}
