package domain

import "time"

// ServiceKind is a catalog entry describing an offered service. The
// applicable SLA profile is looked up by its Code.
type ServiceKind struct {
	ID          string
	Code        string
	Name        string
	Description string
	Status      ServiceKindStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ServiceKindStatus is the catalog entry lifecycle state.
type ServiceKindStatus string

const (
	ServiceKindStatusActive  ServiceKindStatus = "active"
	ServiceKindStatusRetired ServiceKindStatus = "retired"
)
