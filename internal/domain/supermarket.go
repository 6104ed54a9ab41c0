package domain

import (
	"strings"
)

// DefaultDistance is used when a supermarket is added without a distance label
const DefaultDistance = "0.0 km"

// Supermarket represents a partner store
type Supermarket struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Logo       string `json:"logo"`
	Color      string `json:"color"`
	Distance   string `json:"distance,omitempty"`
	WebsiteURL string `json:"websiteUrl,omitempty"`
}

// NewSupermarket holds the fields accepted when a supermarket is created
type NewSupermarket struct {
	Name       string `json:"name" validate:"required,notblank,max=100"`
	Logo       string `json:"logo" validate:"required,url"`
	Color      string `json:"color" validate:"omitempty,hexcolor"`
	Distance   string `json:"distance" validate:"max=20"`
	WebsiteURL string `json:"websiteUrl" validate:"omitempty,url"`
}

// Validate checks the new supermarket fields
func (n NewSupermarket) Validate() error {
	return validate.Struct(n)
}

// Build turns the create request into a Supermarket with the given id.
func (n NewSupermarket) Build(id string) Supermarket {
	distance := strings.TrimSpace(n.Distance)
	if distance == "" {
		distance = DefaultDistance
	}
	return Supermarket{
		ID:         id,
		Name:       strings.TrimSpace(n.Name),
		Logo:       n.Logo,
		Color:      n.Color,
		Distance:   distance,
		WebsiteURL: n.WebsiteURL,
	}
}

// SupermarketUpdate lists the supermarket fields an admin may change.
// Nil fields are left untouched; an empty WebsiteURL clears the link.
type SupermarketUpdate struct {
	Name       *string `json:"name"`
	Logo       *string `json:"logo"`
	Color      *string `json:"color"`
	Distance   *string `json:"distance"`
	WebsiteURL *string `json:"websiteUrl"`
}

// Validate checks every field that is present
func (u SupermarketUpdate) Validate() error {
	checks := []struct {
		field string
		value *string
		tag   string
	}{
		{"name", u.Name, "required,notblank,max=100"},
		{"logo", u.Logo, "required,url"},
		{"color", u.Color, "omitempty,hexcolor"},
		{"distance", u.Distance, "max=20"},
		{"websiteUrl", u.WebsiteURL, "omitempty,url"},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := validate.Var(*c.value, c.tag); err != nil {
			return &FieldError{Field: c.field, Err: err}
		}
	}
	return nil
}

// IsEmpty reports whether the update changes nothing
func (u SupermarketUpdate) IsEmpty() bool {
	return u.Name == nil && u.Logo == nil && u.Color == nil && u.Distance == nil && u.WebsiteURL == nil
}

// Apply merges the update into s and returns the result
func (u SupermarketUpdate) Apply(s Supermarket) Supermarket {
	if u.Name != nil {
		s.Name = strings.TrimSpace(*u.Name)
	}
	if u.Logo != nil {
		s.Logo = *u.Logo
	}
	if u.Color != nil {
		s.Color = *u.Color
	}
	if u.Distance != nil {
		s.Distance = *u.Distance
	}
	if u.WebsiteURL != nil {
		s.WebsiteURL = *u.WebsiteURL
	}
	return s
}
