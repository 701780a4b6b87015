package valueobject

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PostalAddress is a value object representing a US-style postal address
// It is immutable - all operations return new PostalAddress instances
type PostalAddress struct {
	line1      string
	line2      string
	city       string
	state      string
	postalCode string
	country    string
}

// PostalAddressOption is a functional option for configuring PostalAddress
type PostalAddressOption func(*PostalAddress)

// WithLine2 sets the second address line
func WithLine2(line2 string) PostalAddressOption {
	return func(a *PostalAddress) {
		a.line2 = strings.TrimSpace(line2)
	}
}

// WithCountry sets the country for the address
func WithCountry(country string) PostalAddressOption {
	return func(a *PostalAddress) {
		a.country = strings.TrimSpace(country)
	}
}

// NewPostalAddress creates a new PostalAddress
// Line1 and city are required; the remaining fields are optional
func NewPostalAddress(line1, city, state, postalCode string, opts ...PostalAddressOption) (PostalAddress, error) {
	line1 = strings.TrimSpace(line1)
	city = strings.TrimSpace(city)
	state = strings.TrimSpace(state)
	postalCode = strings.TrimSpace(postalCode)

	if line1 == "" {
		return PostalAddress{}, fmt.Errorf("address line 1 cannot be empty")
	}
	if len(line1) > 200 {
		return PostalAddress{}, fmt.Errorf("address line 1 cannot exceed 200 characters")
	}
	if city == "" {
		return PostalAddress{}, fmt.Errorf("city cannot be empty")
	}
	if len(city) > 100 {
		return PostalAddress{}, fmt.Errorf("city cannot exceed 100 characters")
	}
	if len(state) > 100 {
		return PostalAddress{}, fmt.Errorf("state cannot exceed 100 characters")
	}
	if len(postalCode) > 20 {
		return PostalAddress{}, fmt.Errorf("postal code cannot exceed 20 characters")
	}

	addr := PostalAddress{
		line1:      line1,
		city:       city,
		state:      state,
		postalCode: postalCode,
	}

	for _, opt := range opts {
		opt(&addr)
	}

	if len(addr.line2) > 200 {
		return PostalAddress{}, fmt.Errorf("address line 2 cannot exceed 200 characters")
	}
	if len(addr.country) > 100 {
		return PostalAddress{}, fmt.Errorf("country cannot exceed 100 characters")
	}

	return addr, nil
}

// Line1 returns the first address line
func (a PostalAddress) Line1() string { return a.line1 }

// Line2 returns the second address line
func (a PostalAddress) Line2() string { return a.line2 }

// City returns the city
func (a PostalAddress) City() string { return a.city }

// State returns the state or province
func (a PostalAddress) State() string { return a.state }

// PostalCode returns the postal code
func (a PostalAddress) PostalCode() string { return a.postalCode }

// Country returns the country
func (a PostalAddress) Country() string { return a.country }

// IsZero reports whether the address is the zero value
func (a PostalAddress) IsZero() bool {
	return a == PostalAddress{}
}

// Equals checks if two addresses are equal
func (a PostalAddress) Equals(other PostalAddress) bool {
	return a == other
}

// String returns a single-line representation of the address
func (a PostalAddress) String() string {
	parts := make([]string, 0, 5)
	parts = append(parts, a.line1)
	if a.line2 != "" {
		parts = append(parts, a.line2)
	}
	parts = append(parts, a.city)
	if a.state != "" {
		parts = append(parts, a.state)
	}
	if a.postalCode != "" {
		parts = append(parts, a.postalCode)
	}
	return strings.Join(parts, ", ")
}

// addressJSON is the JSON representation of PostalAddress
type addressJSON struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (a PostalAddress) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Line1:      a.line1,
		Line2:      a.line2,
		City:       a.city,
		State:      a.state,
		PostalCode: a.postalCode,
		Country:    a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *PostalAddress) UnmarshalJSON(data []byte) error {
	var raw addressJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	opts := []PostalAddressOption{}
	if raw.Line2 != "" {
		opts = append(opts, WithLine2(raw.Line2))
	}
	if raw.Country != "" {
		opts = append(opts, WithCountry(raw.Country))
	}
	addr, err := NewPostalAddress(raw.Line1, raw.City, raw.State, raw.PostalCode, opts...)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
