package security

import (
	"unicode"
	"unicode/utf8"
)

const (
	minPasswordLength    = 8
	strongPasswordLength = 12
)

type PasswordStrength struct {
	Score    int      `json:"score"`
	MaxScore int      `json:"max_score"`
	Level    string   `json:"level"`
	IsValid  bool     `json:"is_valid"`
	Feedback []string `json:"feedback,omitempty"`
}

type passwordTraits struct {
	minLength  bool
	longLength bool
	lower      bool
	upper      bool
	digit      bool
	symbol     bool
}

func inspectPassword(pw string) passwordTraits {
	n := utf8.RuneCountInString(pw)
	t := passwordTraits{
		minLength:  n >= minPasswordLength,
		longLength: n >= strongPasswordLength,
	}
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			t.lower = true
		case unicode.IsUpper(r):
			t.upper = true
		case unicode.IsDigit(r):
			t.digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			t.symbol = true
		}
	}
	return t
}

// CheckPasswordStrength scores pw from 0 to 6. IsValid requires the minimum
// length and all four character classes.
func CheckPasswordStrength(pw string) PasswordStrength {
	t := inspectPassword(pw)

	criteria := []struct {
		met      bool
		feedback string
	}{
		{t.minLength, "Password must be at least 8 characters long"},
		{t.longLength, "Use 12 or more characters for a stronger password"},
		{t.lower, "Add a lowercase letter"},
		{t.upper, "Add an uppercase letter"},
		{t.digit, "Add a number"},
		{t.symbol, "Add a special character"},
	}

	res := PasswordStrength{MaxScore: len(criteria)}
	for _, c := range criteria {
		if c.met {
			res.Score++
		} else {
			res.Feedback = append(res.Feedback, c.feedback)
		}
	}

	res.IsValid = t.minLength && t.lower && t.upper && t.digit && t.symbol

	switch {
	case res.Score >= 6:
		res.Level = "strong"
	case res.Score >= 4:
		res.Level = "medium"
	default:
		res.Level = "weak"
	}
	return res
}
