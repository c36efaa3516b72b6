package models

import (
	"strings"
	"time"
)

// Service represents an entry in the service catalog.
type Service struct {
	ID          int       `json:"service_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       Money     `json:"price"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceInput is used for creating/updating services.
type ServiceInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Price       Money   `json:"price"`
	IsActive    *bool   `json:"is_active"`
}

func (s *ServiceInput) Validate() string {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return "name is required"
	}
	if len(s.Name) > 100 {
		return "name cannot exceed 100 characters"
	}
	if s.Price < 0 {
		return "price must be zero or greater"
	}
	return ""
}
