package models

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 6
	// PasswordSymbols is the punctuation set a password must draw from.
	PasswordSymbols = `!@#$%^&*(),.?":{}|<>`
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{3,19}$`)
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Profile is a registration request.
type Profile struct {
	Username        string `json:"username"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// Validate checks the profile locally and returns one message per failing
// field. The first failing rule of a field wins. A nil map means valid.
func (p Profile) Validate() map[string][]string {
	errs := map[string][]string{}
	add := func(field, msg string) {
		if msg != "" {
			errs[field] = []string{msg}
		}
	}

	add("username", validateUsername(p.Username))
	add("email", validateEmail(p.Email))
	add("password", validatePassword(p.Password))
	add("password_confirm", validateConfirm(p.Password, p.PasswordConfirm))

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func validateUsername(s string) string {
	switch {
	case s == "":
		return "Username is required"
	case !usernamePattern.MatchString(s):
		return "Username must start with a letter and contain only letters and digits, 4 to 20 characters"
	}
	return ""
}

func validateEmail(s string) string {
	switch {
	case s == "":
		return "Email is required"
	case !emailPattern.MatchString(s):
		return "Enter a valid email address"
	}
	return ""
}

func validatePassword(s string) string {
	switch {
	case s == "":
		return "Password is required"
	case utf8.RuneCountInString(s) < MinPasswordLength:
		return "Password must be at least 6 characters long"
	case !strings.ContainsFunc(s, unicode.IsUpper):
		return "Password must contain at least one uppercase letter"
	case !strings.ContainsFunc(s, unicode.IsDigit):
		return "Password must contain at least one digit"
	case !strings.ContainsAny(s, PasswordSymbols):
		return "Password must contain at least one special character"
	}
	return ""
}

func validateConfirm(password, confirm string) string {
	switch {
	case confirm == "":
		return "Please confirm the password"
	case confirm != password:
		return "Passwords do not match"
	}
	return ""
}

// Credentials is a login request.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
