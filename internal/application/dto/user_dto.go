package dto

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MinPasswordLength largo mínimo del password en registro.
const MinPasswordLength = 8

// RegisterRequest entrada para registro. El rol no se acepta: toda cuenta nueva es customer.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

// Validate reglas de registro.
func (r RegisterRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return invalid("email y password son requeridos")
	}
	if !looksLikeEmail(r.Email) {
		return invalid("email inválido")
	}
	if utf8.RuneCountInString(r.Password) < MinPasswordLength {
		return invalid("password debe tener al menos %d caracteres", MinPasswordLength)
	}
	if strings.TrimSpace(r.FirstName) == "" || strings.TrimSpace(r.LastName) == "" {
		return invalid("firstName y lastName son requeridos")
	}
	return nil
}

// looksLikeEmail chequeo mínimo: algo@algo.algo, sin espacios.
func looksLikeEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.LastIndex(s, "@")
	if at < 1 || at == len(s)-1 || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	return strings.Contains(s[at+1:], ".")
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate requiere ambos campos.
func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return invalid("email y password son requeridos")
	}
	return nil
}

// PreferencesDTO preferencias de notificación.
type PreferencesDTO struct {
	EmailNotifications bool `json:"emailNotifications"`
	SMSNotifications   bool `json:"smsNotifications"`
	Newsletter         bool `json:"newsletter"`
}

// UpdateProfileRequest actualización parcial del perfil propio (campos nil no se tocan).
type UpdateProfileRequest struct {
	FirstName   *string         `json:"firstName"`
	LastName    *string         `json:"lastName"`
	Phone       *string         `json:"phone"`
	Avatar      *string         `json:"avatar"`
	Addresses   *[]AddressDTO   `json:"addresses"`
	Preferences *PreferencesDTO `json:"preferences"`
}

// Validate no permite vaciar nombre ni apellido.
func (r UpdateProfileRequest) Validate() error {
	if r.FirstName != nil && strings.TrimSpace(*r.FirstName) == "" {
		return invalid("firstName no puede ser vacío")
	}
	if r.LastName != nil && strings.TrimSpace(*r.LastName) == "" {
		return invalid("lastName no puede ser vacío")
	}
	if r.Addresses != nil {
		for i, a := range *r.Addresses {
			if err := a.Validate(fmt.Sprintf("addresses[%d]", i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	FirstName   string         `json:"firstName"`
	LastName    string         `json:"lastName"`
	Phone       string         `json:"phone,omitempty"`
	Avatar      string         `json:"avatar,omitempty"`
	Role        string         `json:"role"`
	Addresses   []AddressDTO   `json:"addresses"`
	Preferences PreferencesDTO `json:"preferences"`
	IsVerified  bool           `json:"isVerified"`
	IsActive    bool           `json:"isActive"`
	LastLogin   *time.Time     `json:"lastLogin,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// AuthResponse token + usuario (registro y login).
type AuthResponse struct {
	User  UserResponse `json:"user"`
	Token string       `json:"token"`
}
