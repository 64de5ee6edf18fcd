package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup() SignupRequest {
	return SignupRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada.Lovelace@Example.com",
		Password:  "Str0ng!Pass",
	}
}

func TestSignupRequest_Normalize(t *testing.T) {
	r := validSignup()
	r.Email = "  Ada.Lovelace@Example.com "
	r.FirstName = " Ada "
	r.Normalize()

	assert.Equal(t, "ada.lovelace@example.com", r.Email)
	assert.Equal(t, "Ada", r.FirstName)
	require.NoError(t, r.Validate())
}

func TestValidatePassword_RuleOrder(t *testing.T) {
	tests := []struct {
		password string
		message  string
	}{
		{"", "Password must be at least 8 characters"},
		{"Ab1!", "Password must be at least 8 characters"},
		{"ABCDEFG1!", "Password must contain a lowercase letter"},
		{"abcdefg1!", "Password must contain an uppercase letter"},
		{"Abcdefgh!", "Password must contain a number"},
		{"Abcdefgh1", "Password must contain a special character"},
		{"Abcd efg1", "Password must not contain spaces"},
		{"Abcd\tef1!", "Password must not contain spaces"},
		// several rules broken at once: the earliest in the order wins
		{"abc", "Password must be at least 8 characters"},
		{"abcdefgh", "Password must contain an uppercase letter"},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	assert.NoError(t, ValidatePassword("Str0ng!Pass"))
}

func TestValidatePassword_ByteLimit(t *testing.T) {
	assert.NoError(t, ValidatePassword("Str0ng!"+strings.Repeat("a", MaxPasswordBytes-7)))

	err := ValidatePassword("Str0ng!" + strings.Repeat("a", 73))
	require.Error(t, err)
	assert.Equal(t, "Password must be at most 72 bytes", err.Error())

	// 40 runes, 77 bytes.
	err = ValidatePassword("S0!" + strings.Repeat("é", 37))
	require.Error(t, err)
	assert.Equal(t, "Password must be at most 72 bytes", err.Error())
}

func TestSignupRequest_BlockedDomains(t *testing.T) {
	for _, domain := range []string{
		"tempmail.com", "10minutemail.com", "disposablemail.com",
		"mailinator.com", "guerrillamail.com", "yopmail.com",
	} {
		for _, local := range []string{"a", "john.doe", "x+tag"} {
			r := validSignup()
			r.Email = local + "@" + strings.ToUpper(domain)
			r.Normalize()
			err := r.Validate()
			require.Error(t, err, r.Email)
			assert.Equal(t, "This email domain is not allowed", err.Error())
		}
	}

	assert.False(t, IsBlockedEmailDomain("user@sub.mailinator.com"))
	assert.False(t, IsBlockedEmailDomain("not-an-email"))
}

func TestSignupRequest_FieldRules(t *testing.T) {
	long := strings.Repeat("é", 101)
	tests := []struct {
		name    string
		mutate  func(*SignupRequest)
		message string
	}{
		{"first name missing", func(r *SignupRequest) { r.FirstName = "" }, "First name is required"},
		{"first name blank", func(r *SignupRequest) { r.FirstName = "   " }, "First name is required"},
		{"first name too long", func(r *SignupRequest) { r.FirstName = long }, "First name must be at most 100 characters"},
		{"last name missing", func(r *SignupRequest) { r.LastName = "" }, "Last name is required"},
		{"last name too long", func(r *SignupRequest) { r.LastName = long }, "Last name must be at most 100 characters"},
		{"email missing", func(r *SignupRequest) { r.Email = "" }, "Invalid email address"},
		{"email malformed", func(r *SignupRequest) { r.Email = "ada@" }, "Invalid email address"},
		{"first failing field wins", func(r *SignupRequest) { r.LastName = ""; r.Password = "x" }, "Last name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validSignup()
			tt.mutate(&r)
			r.Normalize()
			err := r.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	r := validSignup()
	r.FirstName = strings.Repeat("é", 100)
	r.Normalize()
	assert.NoError(t, r.Validate())
}

func TestLoginRequest(t *testing.T) {
	r := LoginRequest{Email: " ADA@example.com", Password: ""}
	r.Normalize()
	assert.Equal(t, "ada@example.com", r.Email)
	require.EqualError(t, r.Validate(), "Password is required")
}
