package validation

import (
	"strings"
)

// PhoneResult is the outcome of ValidatePhoneNumber.
type PhoneResult struct {
	IsValid bool   `json:"is_valid"`
	E164    string `json:"e164,omitempty"`
	Country string `json:"country,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// Phone rule names.
const (
	RuleE164          = "e164"
	RuleIntlPrefix    = "intl_00_prefix"
	RuleNANPWithOne   = "nanp_11_digits"
	RuleUKMobile      = "uk_mobile_07"
	RuleIndiaWith91   = "india_91_prefix"
	RuleNANPTenDigits = "nanp_10_digits"
)

type phoneRule struct {
	name    string
	country string
	match   func(digits string) bool
	format  func(digits string) string
}

// Ordered: the first matching rule is the only one applied.
var localPhoneRules = []phoneRule{
	{
		name:    RuleIntlPrefix,
		country: "INTL",
		match: func(d string) bool {
			return strings.HasPrefix(d, "00") && len(d)-2 >= 8 && len(d)-2 <= 15 && d[2] != '0'
		},
		format: func(d string) string { return "+" + d[2:] },
	},
	{
		name:    RuleNANPWithOne,
		country: "US",
		match:   func(d string) bool { return len(d) == 11 && d[0] == '1' },
		format:  func(d string) string { return "+" + d },
	},
	{
		name:    RuleUKMobile,
		country: "GB",
		match:   func(d string) bool { return len(d) == 11 && strings.HasPrefix(d, "07") },
		format:  func(d string) string { return "+44" + d[1:] },
	},
	{
		name:    RuleIndiaWith91,
		country: "IN",
		match: func(d string) bool {
			return len(d) == 12 && strings.HasPrefix(d, "91") && d[2] >= '6' && d[2] <= '9'
		},
		format: func(d string) string { return "+" + d },
	},
	{
		name:    RuleNANPTenDigits,
		country: "US",
		match:   func(d string) bool { return len(d) == 10 && d[0] >= '2' && d[0] <= '9' },
		format:  func(d string) string { return "+1" + d },
	},
}

// ValidatePhoneNumber normalizes raw input to E.164. Input with a leading '+'
// must carry 8-15 digits. Input without it goes through localPhoneRules and
// gets exactly one rule applied, or is reported invalid.
func ValidatePhoneNumber(raw string) PhoneResult {
	s := stripPhoneSeparators(strings.TrimSpace(raw))
	if s == "" {
		return PhoneResult{Reason: "phone number is empty"}
	}

	plus := strings.HasPrefix(s, "+")
	digits := strings.TrimPrefix(s, "+")
	if !allDigits(digits) {
		return PhoneResult{Reason: "phone number may contain only digits and a leading +"}
	}

	if plus {
		if len(digits) < 8 || len(digits) > 15 || digits[0] == '0' {
			return PhoneResult{Reason: "international numbers need 8 to 15 digits after +"}
		}
		return PhoneResult{IsValid: true, E164: "+" + digits, Rule: RuleE164}
	}

	for _, rule := range localPhoneRules {
		if rule.match(digits) {
			return PhoneResult{
				IsValid: true,
				E164:    rule.format(digits),
				Country: rule.country,
				Rule:    rule.name,
			}
		}
	}

	return PhoneResult{Reason: "unrecognized phone number format, include the country code with +"}
}

func stripPhoneSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')', '\t':
			return -1
		}
		return r
	}, s)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
