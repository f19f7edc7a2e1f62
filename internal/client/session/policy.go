package session

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Password length bounds.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 20
)

// SpecialChars is the set a password must draw at least one character from.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

// PasswordRule names one unmet password requirement.
type PasswordRule string

const (
	RuleMinLength PasswordRule = "minLength"
	RuleMaxLength PasswordRule = "maxLength"
	RuleNumber    PasswordRule = "hasNumber"
	RuleSpecial   PasswordRule = "hasSpecial"
	RuleUpper     PasswordRule = "hasUpperCase"
	RuleLower     PasswordRule = "hasLowerCase"
)

var ruleText = map[PasswordRule]string{
	RuleMinLength: fmt.Sprintf("at least %d characters", MinPasswordLength),
	RuleMaxLength: fmt.Sprintf("at most %d characters", MaxPasswordLength),
	RuleNumber:    "a digit",
	RuleSpecial:   "a special character",
	RuleUpper:     "an uppercase letter",
	RuleLower:     "a lowercase letter",
}

func (r PasswordRule) String() string {
	if t, ok := ruleText[r]; ok {
		return t
	}
	return string(r)
}

type charClasses struct {
	digit, special, upper, lower bool
}

func classify(p string) charClasses {
	var c charClasses
	for _, r := range p {
		switch {
		case r >= '0' && r <= '9':
			c.digit = true
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= 'a' && r <= 'z':
			c.lower = true
		case strings.ContainsRune(SpecialChars, r):
			c.special = true
		}
	}
	return c
}

// CheckPassword returns the rules p breaks, in a stable order. An empty
// password is "not checked" and yields nil.
func CheckPassword(p string) []PasswordRule {
	if p == "" {
		return nil
	}
	var broken []PasswordRule
	n := utf8.RuneCountInString(p)
	if n < MinPasswordLength {
		broken = append(broken, RuleMinLength)
	}
	if n > MaxPasswordLength {
		broken = append(broken, RuleMaxLength)
	}
	c := classify(p)
	if !c.digit {
		broken = append(broken, RuleNumber)
	}
	if !c.special {
		broken = append(broken, RuleSpecial)
	}
	if !c.upper {
		broken = append(broken, RuleUpper)
	}
	if !c.lower {
		broken = append(broken, RuleLower)
	}
	return broken
}

// Strength is a coarse password strength bucket.
type Strength string

const (
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// PasswordStrength scores p from 0 to 6, one point each for length >= 8,
// length >= 12, lowercase, uppercase, digit and special character.
func PasswordStrength(p string) (Strength, int) {
	score := 0
	n := utf8.RuneCountInString(p)
	if n >= 8 {
		score++
	}
	if n >= 12 {
		score++
	}
	c := classify(p)
	for _, ok := range []bool{c.lower, c.upper, c.digit, c.special} {
		if ok {
			score++
		}
	}

	switch {
	case score >= 5:
		return StrengthStrong, score
	case score >= 3:
		return StrengthMedium, score
	default:
		return StrengthWeak, score
	}
}

// PasswordsMatch compares a password with its confirmation. When either is
// empty the pair is not checked yet and counts as matching.
func PasswordsMatch(password, confirmation string) bool {
	if password == "" || confirmation == "" {
		return true
	}
	return password == confirmation
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// mustRegister adds a custom tag to v. A failure is a programming error.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %q validation: %v", tag, err))
	}
}

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return strings.ToLower(f.Name)
			}
			return name
		})
		mustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool {
			p := fl.Field().String()
			return p != "" && len(CheckPassword(p)) == 0
		})
		mustRegister(v, "role", func(fl validator.FieldLevel) bool {
			return Role(fl.Field().String()).Valid()
		})
		validate = v
	})
	return validate
}

// Validate checks v's `validate` struct tags. Failures are returned as a
// *ValidationError.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: fieldError(fe)})
	}
	return out
}

func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "role":
		names := make([]string, len(Roles))
		for i, r := range Roles {
			names[i] = string(r)
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	case "strongpassword":
		rules := CheckPassword(fe.Value().(string))
		parts := make([]string, len(rules))
		for i, r := range rules {
			parts[i] = r.String()
		}
		return field + " needs " + strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
