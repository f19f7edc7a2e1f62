package session

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     []PasswordRule
	}{
		{"empty is not checked", "", nil},
		{"valid", "Abcdef1!", nil},
		{"too short", "Ab1!", []PasswordRule{RuleMinLength}},
		{"too long", "Abcdefghij1!" + strings.Repeat("x", 10), []PasswordRule{RuleMaxLength}},
		{"no digit", "Abcdefg!", []PasswordRule{RuleNumber}},
		{"no special", "Abcdefg1", []PasswordRule{RuleSpecial}},
		{"no upper", "abcdef1!", []PasswordRule{RuleUpper}},
		{"no lower", "ABCDEF1!", []PasswordRule{RuleLower}},
		{"underscore is not special", "Abcdef1_", []PasswordRule{RuleSpecial}},
		{"everything missing", "-", []PasswordRule{RuleMinLength, RuleNumber, RuleSpecial, RuleUpper, RuleLower}},
		{"exactly twenty", "Abcdefghijklmnopq1!x", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckPassword(tt.password))
		})
	}
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		password  string
		wantScore int
		want      Strength
	}{
		{"", 0, StrengthWeak},
		{"abc", 1, StrengthWeak},
		{"abcdefgh", 2, StrengthWeak},
		{"abcdefgH", 3, StrengthMedium},
		{"abcdefH1", 4, StrengthMedium},
		{"abcdeH1!", 5, StrengthStrong},
		{"abcdefghH1!x", 6, StrengthStrong},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			got, score := PasswordStrength(tt.password)
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPasswordsMatch(t *testing.T) {
	assert.True(t, PasswordsMatch("", "x"))
	assert.True(t, PasswordsMatch("x", ""))
	assert.True(t, PasswordsMatch("Abc1!xyz", "Abc1!xyz"))
	assert.False(t, PasswordsMatch("Abc1!xyz", "Abc1!xyZ"))
}

func TestValidate_Registration(t *testing.T) {
	err := Validate(RegistrationRequest{Email: "bad", Password: "weak"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	fields := map[string]string{}
	for _, f := range ve.Fields {
		fields[f.Field] = f.Message
	}
	assert.Equal(t, "nombre is required", fields["nombre"])
	assert.Equal(t, "apellido is required", fields["apellido"])
	assert.Equal(t, "email must be a valid email", fields["email"])
	assert.Contains(t, fields["password"], "at least 8 characters")
	assert.Equal(t, "rol is required", fields["rol"])
}

func TestValidate_ProfileUpdateOnlyChecksSetFields(t *testing.T) {
	require.NoError(t, Validate(ProfileUpdate{}))

	empty := ""
	err := Validate(ProfileUpdate{FirstName: &empty})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "nombre", ve.Fields[0].Field)
}

func TestMustRegister(t *testing.T) {
	always := func(validator.FieldLevel) bool { return true }

	assert.NotPanics(t, func() { mustRegister(validator.New(), "anything", always) })
	assert.Panics(t, func() { mustRegister(validator.New(), "", always) }, "empty tag is rejected by the validator")
	assert.NotPanics(t, func() { validatorInstance() })
}
