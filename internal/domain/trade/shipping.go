package trade

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// Shipping field names as they travel on the wire
const (
	FieldName       = "nombre"
	FieldEmail      = "email"
	FieldPhone      = "telefono"
	FieldAddress    = "direccion"
	FieldPostalCode = "codigoPostal"
	FieldCity       = "ciudad"
	FieldProvince   = "provincia"
)

// ShippingFields lists every shipping field in form order
var ShippingFields = []string{
	FieldName, FieldEmail, FieldPhone, FieldAddress, FieldPostalCode, FieldCity, FieldProvince,
}

// Field error reasons
const (
	ReasonRequired = "required"
	ReasonInvalid  = "invalid"
)

const minPhoneDigits = 9

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern      = regexp.MustCompile(`^[0-9+\s()\-]+$`)
	postalCodePattern = regexp.MustCompile(`^\d{5}$`)
)

// ShippingInfo is the customer's delivery data
type ShippingInfo struct {
	Name       string `json:"nombre"`
	Email      string `json:"email"`
	Phone      string `json:"telefono"`
	Address    string `json:"direccion"`
	PostalCode string `json:"codigoPostal"`
	City       string `json:"ciudad"`
	Province   string `json:"provincia"`
}

// ValidationErrors maps a wire field name to "required" or "invalid"
type ValidationErrors map[string]string

// Error implements error
func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, field := range ShippingFields {
		if reason, ok := v[field]; ok {
			parts = append(parts, field+": "+reason)
		}
	}
	return "invalid shipping data: " + strings.Join(parts, ", ")
}

// Normalize returns a copy with every field trimmed
func (s ShippingInfo) Normalize() ShippingInfo {
	return ShippingInfo{
		Name:       strings.TrimSpace(s.Name),
		Email:      strings.TrimSpace(s.Email),
		Phone:      strings.TrimSpace(s.Phone),
		Address:    strings.TrimSpace(s.Address),
		PostalCode: strings.TrimSpace(s.PostalCode),
		City:       strings.TrimSpace(s.City),
		Province:   strings.TrimSpace(s.Province),
	}
}

// Get returns the value of a wire field
func (s ShippingInfo) Get(field string) string {
	switch field {
	case FieldName:
		return s.Name
	case FieldEmail:
		return s.Email
	case FieldPhone:
		return s.Phone
	case FieldAddress:
		return s.Address
	case FieldPostalCode:
		return s.PostalCode
	case FieldCity:
		return s.City
	case FieldProvince:
		return s.Province
	}
	return ""
}

// Validate checks every field independently. It returns nil when the data
// is acceptable.
func (s ShippingInfo) Validate() ValidationErrors {
	errs := ValidationErrors{}
	for _, field := range ShippingFields {
		if reason := ValidateField(field, s.Get(field)); reason != "" {
			errs[field] = reason
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateField checks one field after trimming it and returns "" when valid.
// Unknown fields only get the required check.
func ValidateField(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ReasonRequired
	}
	switch field {
	case FieldEmail:
		if !emailPattern.MatchString(value) {
			return ReasonInvalid
		}
	case FieldPhone:
		if !phonePattern.MatchString(value) || countDigits(value) < minPhoneDigits {
			return ReasonInvalid
		}
	case FieldPostalCode:
		if !postalCodePattern.MatchString(value) {
			return ReasonInvalid
		}
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// IsShippingField reports whether field is a known shipping field
func IsShippingField(field string) bool {
	return slices.Contains(ShippingFields, field)
}
