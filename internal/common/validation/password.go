package validation

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// PolicyViolation lists the failed password rules.
type PolicyViolation struct {
	Rules []string
}

func (v *PolicyViolation) Error() string {
	return fmt.Sprintf("password does not meet policy: %s", strings.Join(v.Rules, "; "))
}

// ValidatePasswordPolicy checks the new password against the account policy.
// current and email may be empty when unknown.
func ValidatePasswordPolicy(password, current, email string) error {
	var rules []string

	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		rules = append(rules, fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if n > MaxPasswordLength {
		rules = append(rules, fmt.Sprintf("must be at most %d characters", MaxPasswordLength))
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	if !upper {
		rules = append(rules, "must contain an uppercase letter")
	}
	if !lower {
		rules = append(rules, "must contain a lowercase letter")
	}
	if !digit {
		rules = append(rules, "must contain a digit")
	}
	if !symbol {
		rules = append(rules, "must contain a symbol")
	}

	if current != "" && password == current {
		rules = append(rules, "must differ from the current password")
	}
	if local, _, ok := strings.Cut(strings.ToLower(email), "@"); ok && len(local) >= 3 {
		if strings.Contains(strings.ToLower(password), local) {
			rules = append(rules, "must not contain your email name")
		}
	}

	if len(rules) > 0 {
		return &PolicyViolation{Rules: rules}
	}
	return nil
}
