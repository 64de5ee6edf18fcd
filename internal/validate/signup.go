package validate

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var blockedEmailDomains = map[string]struct{}{
	"tempmail.com":       {},
	"10minutemail.com":   {},
	"disposablemail.com": {},
	"mailinator.com":     {},
	"guerrillamail.com":  {},
	"yopmail.com":        {},
}

var (
	reLower   = regexp.MustCompile(`[a-z]`)
	reUpper   = regexp.MustCompile(`[A-Z]`)
	reDigit   = regexp.MustCompile(`[0-9]`)
	reSpecial = regexp.MustCompile(`[^a-zA-Z0-9]`)
	reNoSpace = regexp.MustCompile(`^\S+$`)
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var errBlockedDomain = errors.New("This email domain is not allowed")

// IsBlockedEmailDomain reports whether the domain part of email is a known
// disposable mail provider.
func IsBlockedEmailDomain(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	_, blocked := blockedEmailDomains[strings.ToLower(email[at+1:])]
	return blocked
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nameRules(label string) []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(label + " is required"),
		validation.RuneLength(0, 100).Error(label + " must be at most 100 characters"),
	}
}

func emailRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Invalid email address"),
		is.EmailFormat.Error("Invalid email address"),
		validation.By(func(value any) error {
			if s, _ := value.(string); IsBlockedEmailDomain(s) {
				return errBlockedDomain
			}
			return nil
		}),
	}
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error("Password must be at least 8 characters"),
		validation.RuneLength(8, 0).Error("Password must be at least 8 characters"),
		validation.Length(0, MaxPasswordBytes).Error("Password must be at most 72 bytes"),
		validation.Match(reLower).Error("Password must contain a lowercase letter"),
		validation.Match(reUpper).Error("Password must contain an uppercase letter"),
		validation.Match(reDigit).Error("Password must contain a number"),
		validation.Match(reSpecial).Error("Password must contain a special character"),
		validation.Match(reNoSpace).Error("Password must not contain spaces"),
	}
}

// ValidatePassword applies the password policy and returns the first
// violated rule.
func ValidatePassword(password string) error {
	return validation.Validate(password, passwordRules()...)
}

type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`

	// json names of string fields that were absent or null in the body
	missing map[string]bool
}

// UnmarshalJSON decodes the body and remembers which string fields were not
// supplied, so they are reported as type errors rather than as empty values.
func (r *SignupRequest) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	type plain SignupRequest
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = SignupRequest(p)

	r.missing = nil
	for _, name := range []string{"firstName", "lastName", "password"} {
		if raw, ok := fields[name]; !ok || string(raw) == "null" {
			if r.missing == nil {
				r.missing = map[string]bool{}
			}
			r.missing[name] = true
		}
	}
	return nil
}

func (r *SignupRequest) present(field string) error {
	if r.missing[field] {
		return errors.New(r.TypeMessages()[field])
	}
	return nil
}

func (r *SignupRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = NormalizeEmail(r.Email)
}

// Validate checks fields in declaration order so the reported message is
// always the first failure a client would see.
func (r *SignupRequest) Validate() error {
	if err := r.present("firstName"); err != nil {
		return err
	}
	if err := validation.Validate(r.FirstName, nameRules("First name")...); err != nil {
		return err
	}
	if err := r.present("lastName"); err != nil {
		return err
	}
	if err := validation.Validate(r.LastName, nameRules("Last name")...); err != nil {
		return err
	}
	if err := validation.Validate(r.Email, emailRules()...); err != nil {
		return err
	}
	if err := r.present("password"); err != nil {
		return err
	}
	return ValidatePassword(r.Password)
}

func (r *SignupRequest) TypeMessages() map[string]string {
	return map[string]string{
		"firstName": "First name must be a string",
		"lastName":  "Last name must be a string",
		"email":     "Invalid email address",
		"password":  "Password must be a string",
	}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() { r.Email = NormalizeEmail(r.Email) }

func (r *LoginRequest) Validate() error {
	if err := validation.Validate(r.Email,
		validation.Required.Error("Invalid email address"),
		is.EmailFormat.Error("Invalid email address"),
	); err != nil {
		return err
	}
	return validation.Validate(r.Password, validation.Required.Error("Password is required"))
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Normalize() {}

func (r *ChangePasswordRequest) Validate() error {
	if err := validation.Validate(r.CurrentPassword, validation.Required.Error("Current password is required")); err != nil {
		return err
	}
	if err := ValidatePassword(r.NewPassword); err != nil {
		return err
	}
	if r.NewPassword == r.CurrentPassword {
		return errors.New("New password must differ from the current password")
	}
	return nil
}
