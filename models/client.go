package models

import (
	"regexp"
	"strings"
	"time"
)

// Client represents a person or company that contracts services.
type Client struct {
	ID                   int       `json:"client_id"`
	Type                 string    `json:"type"` // persona, empresa
	Name                 string    `json:"name"`
	Phone                *string   `json:"phone"`
	Email                string    `json:"email"`
	IdentificationNumber string    `json:"identification_number"`
	IdentificationType   string    `json:"identification_type"`
	Address              *string   `json:"address"`
	City                 *string   `json:"city"`
	Country              *string   `json:"country"`
	PostalCode           *string   `json:"postal_code"`
	IsActive             bool      `json:"is_active"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

var phonePattern = regexp.MustCompile(`^[+]?[\d\s()-]+$`)

// ClientInput is used for creating/updating clients.
type ClientInput struct {
	Type                 string  `json:"type"`
	Name                 string  `json:"name"`
	Phone                *string `json:"phone"`
	Email                string  `json:"email"`
	IdentificationNumber string  `json:"identification_number"`
	IdentificationType   string  `json:"identification_type"`
	Address              *string `json:"address"`
	City                 *string `json:"city"`
	Country              *string `json:"country"`
	PostalCode           *string `json:"postal_code"`
	IsActive             *bool   `json:"is_active"`
}

func (c *ClientInput) Validate() string {
	switch c.Type {
	case "persona", "empresa":
	default:
		return "type must be one of: persona, empresa"
	}
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return "name is required"
	}
	if len(c.Name) > 200 {
		return "name cannot exceed 200 characters"
	}
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	if c.Email == "" {
		return "email is required"
	}
	if len(c.Email) > 100 || !strings.Contains(c.Email, "@") {
		return "invalid email format"
	}
	c.IdentificationNumber = strings.TrimSpace(c.IdentificationNumber)
	if c.IdentificationNumber == "" {
		return "identification_number is required"
	}
	if len(c.IdentificationNumber) > 50 {
		return "identification_number cannot exceed 50 characters"
	}
	c.IdentificationType = strings.TrimSpace(c.IdentificationType)
	if c.IdentificationType == "" {
		return "identification_type is required"
	}
	if len(c.IdentificationType) > 20 {
		return "identification_type cannot exceed 20 characters"
	}
	if c.Phone != nil {
		p := strings.TrimSpace(*c.Phone)
		if p != "" {
			if len(p) > 20 || !phonePattern.MatchString(p) {
				return "invalid phone number format"
			}
			c.Phone = &p
		}
	}
	return ""
}
