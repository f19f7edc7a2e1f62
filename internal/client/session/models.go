package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is one of the fixed portal roles.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRADOR"
	RolePatient       Role = "PACIENTE"
	RoleLabTechnician Role = "LABORATORISTA"
	RolePhysician     Role = "MEDICO"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdministrator, RolePatient, RoleLabTechnician, RolePhysician}

var roleLabels = map[Role]string{
	RoleAdministrator: "Administrator",
	RolePatient:       "Patient",
	RoleLabTechnician: "Lab technician",
	RolePhysician:     "Physician",
}

// ParseRole accepts a wire role name, case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := roleLabels[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label is the human-facing role name.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// Flag is a boolean that also decodes from the 0/1 integers the users
// service emits.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "true", "1":
		*f = true
	case "false", "0", "null":
		*f = false
	default:
		return fmt.Errorf("invalid flag value %s", b)
	}
	return nil
}

// User is a portal account. Password is only ever populated on the way into
// a backend; Public strips it.
type User struct {
	ID        int64      `json:"idUsuario,omitempty"`
	FirstName string     `json:"nombre"`
	LastName  string     `json:"apellido"`
	Email     string     `json:"email"`
	Phone     string     `json:"telefono,omitempty"`
	Password  string     `json:"password,omitempty"`
	Role      Role       `json:"rol"`
	CreatedAt *time.Time `json:"fechaCreacion,omitempty"`
	Active    Flag       `json:"activo"`
	Token     string     `json:"token,omitempty"`
}

// Public returns a copy without the password.
func (u User) Public() *User {
	u.Password = ""
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		u.CreatedAt = &t
	}
	return &u
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the login payload: the user's identity, the bearer token
// and a server message.
type LoginResponse struct {
	ID        int64  `json:"idUsuario"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Email     string `json:"email"`
	Role      Role   `json:"rol"`
	Token     string `json:"token"`
	Message   string `json:"mensaje,omitempty"`
}

// sessionUser is the snapshot kept for an authenticated login.
func (r *LoginResponse) sessionUser() *User {
	return &User{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Role:      r.Role,
		Token:     r.Token,
		Active:    true,
	}
}

type RegistrationRequest struct {
	FirstName string `json:"nombre" validate:"required,max=50"`
	LastName  string `json:"apellido" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,strongpassword"`
	Role      Role   `json:"rol" validate:"required,role"`
	Phone     string `json:"telefono,omitempty" validate:"omitempty,max=20"`
}

// ProfileUpdate carries a partial user update; nil fields are left alone.
type ProfileUpdate struct {
	FirstName *string `json:"nombre,omitempty" validate:"omitempty,min=1,max=50"`
	LastName  *string `json:"apellido,omitempty" validate:"omitempty,min=1,max=50"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     *string `json:"telefono,omitempty" validate:"omitempty,max=20"`
}

// Empty reports whether no field is set.
func (p ProfileUpdate) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Phone == nil
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
}

// PasswordReset is validated before a reset or change is attempted.
type PasswordReset struct {
	Email       string `validate:"omitempty,email"`
	NewPassword string `validate:"required,strongpassword"`
}

// TokenClaims is the claim set carried by portal bearer tokens.
type TokenClaims struct {
	UserID int64  `json:"uid"`
	Email  string `json:"email"`
	Role   Role   `json:"rol"`
	jwt.RegisteredClaims
}

// InspectToken decodes the claims of a JWT without verifying its signature.
// The client never holds the signing key; this is for display only.
func InspectToken(token string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("inspect token: %w", err)
	}
	return claims, nil
}

func encodeUser(u *User) ([]byte, error) {
	return json.Marshal(u)
}

func decodeUser(b []byte) (*User, error) {
	var u User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, err
	}
	if u.ID == 0 && u.Email == "" {
		return nil, fmt.Errorf("snapshot has no identity")
	}
	return &u, nil
}
