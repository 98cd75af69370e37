package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Provider for an unknown service or professional id.
var ErrNotFound = errors.New("catalog entry not found")

// Service is a bookable home service. BasePrice is in whole currency units.
type Service struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	BasePrice int64    `json:"base_price"`
	Duration  string   `json:"duration"`
	Includes  []string `json:"includes"`
}

// Professional is a worker who can be booked for a service.
type Professional struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Rating       float64  `json:"rating"`
	Reviews      int      `json:"reviews"`
	Specialties  []string `json:"specialties"`
	HourlyRate   int64    `json:"hourly_rate"`
	Availability []string `json:"availability"`
}

// Offers reports whether the professional lists the given specialty.
func (p Professional) Offers(specialty string) bool {
	for _, s := range p.Specialties {
		if s == specialty {
			return true
		}
	}
	return false
}

// Query filters catalog listings. Empty fields match everything.
type Query struct {
	Text     string
	Category string
}

// Provider is the read-only catalog collaborator.
type Provider interface {
	ListServices(ctx context.Context, q Query) ([]Service, error)
	GetService(ctx context.Context, id string) (*Service, error)
	ListProfessionals(ctx context.Context, q Query) ([]Professional, error)
	GetProfessional(ctx context.Context, id string) (*Professional, error)
}
