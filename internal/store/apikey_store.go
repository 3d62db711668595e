package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/wolfeidau/wardenhub/internal/models"
)

// ApiKeyStore defines the interface for API key references. Issuance happens
// elsewhere; this store only records and lists keys per organization.
type ApiKeyStore interface {
	// Create records a key reference for an organization.
	Create(ctx context.Context, key *models.ApiKey) error

	// ListForOrganization returns all keys issued for an organization,
	// oldest first. A missing organization yields an empty list, not an
	// error.
	ListForOrganization(ctx context.Context, orgID uuid.UUID) ([]*models.ApiKey, error)
}
