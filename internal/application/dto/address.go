package dto

import "github.com/jhoicas/storefront-api/internal/domain/entity"

// AddressDTO dirección en requests y responses.
type AddressDTO struct {
	Type      string `json:"type,omitempty"`
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

// Validate exige calle, ciudad y país; type solo puede ser billing o shipping.
func (a AddressDTO) Validate(field string) error {
	if a.Street == "" || a.City == "" || a.Country == "" {
		return invalid("%s: street, city y country son requeridos", field)
	}
	if a.Type != "" && a.Type != entity.AddressBilling && a.Type != entity.AddressShipping {
		return invalid("%s: type debe ser billing o shipping", field)
	}
	return nil
}

// ToEntity convierte a la dirección de dominio.
func (a AddressDTO) ToEntity() entity.Address {
	return entity.Address{
		Type: a.Type, FirstName: a.FirstName, LastName: a.LastName,
		Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country,
		Phone: a.Phone, IsDefault: a.IsDefault,
	}
}

// AddressFromEntity convierte desde dominio.
func AddressFromEntity(a entity.Address) AddressDTO {
	return AddressDTO{
		Type: a.Type, FirstName: a.FirstName, LastName: a.LastName,
		Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country,
		Phone: a.Phone, IsDefault: a.IsDefault,
	}
}
