package entity

import "time"

// Roles válidos para User.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
)

// Tipos de dirección.
const (
	AddressBilling  = "billing"
	AddressShipping = "shipping"
)

// Address dirección postal. Se guarda embebida en el usuario y copiada (snapshot) en cada orden.
type Address struct {
	Type      string `json:"type,omitempty"` // billing, shipping
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone,omitempty"`
	IsDefault bool   `json:"isDefault,omitempty"`
}

// Complete indica si la dirección tiene los campos mínimos para enviar un pedido.
func (a Address) Complete() bool {
	return a.Street != "" && a.City != "" && a.Country != ""
}

// Preferences preferencias de notificación del usuario.
type Preferences struct {
	EmailNotifications bool `json:"emailNotifications"`
	SMSNotifications   bool `json:"smsNotifications"`
	Newsletter         bool `json:"newsletter"`
}

// DefaultPreferences valores con los que nace una cuenta.
func DefaultPreferences() Preferences {
	return Preferences{EmailNotifications: true}
}

// User representa una cuenta de la tienda. Nunca se borra físicamente: se desactiva con IsActive.
type User struct {
	ID           string
	Email        string // normalizado: minúsculas y sin espacios
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	FirstName    string
	LastName     string
	Phone        string
	Avatar       string
	Role         string // customer, admin, vendor
	Addresses    []Address
	Preferences  Preferences
	IsVerified   bool
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName nombre para mostrar.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// IsValidRole indica si role es uno de los roles conocidos.
func IsValidRole(role string) bool {
	switch role {
	case RoleCustomer, RoleAdmin, RoleVendor:
		return true
	}
	return false
}
