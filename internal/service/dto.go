package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/wolfeidau/wardenhub/internal/models"
)

// OrganizationDto is the transfer projection handed to callers. It carries
// organization fields plus the associated API keys, never the raw aggregate.
type OrganizationDto struct {
	OrgID       uuid.UUID
	Name        string
	OwnerUserID uuid.UUID
	Wardens     []WardenDto
	Members     []MemberDto
	ApiKeys     []ApiKeyDto
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// WardenDto is one warden in the transfer projection.
type WardenDto struct {
	Name    string
	Enabled bool
}

// MemberDto is one membership in the transfer projection.
type MemberDto struct {
	UserID  uuid.UUID
	Email   string
	Role    models.OrganizationRole
	AddedAt time.Time
}

// ApiKeyDto carries one API key secret with its fingerprint.
type ApiKeyDto struct {
	Secret      string
	Fingerprint string
	CreatedAt   time.Time
}

func newOrganizationDto(org *models.Organization, keys []*models.ApiKey) *OrganizationDto {
	dto := &OrganizationDto{
		OrgID:       org.OrgID,
		Name:        org.Name,
		OwnerUserID: org.OwnerUserID,
		Wardens:     make([]WardenDto, 0, len(org.Wardens)),
		Members:     make([]MemberDto, 0, len(org.Members)),
		ApiKeys:     make([]ApiKeyDto, 0, len(keys)),
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
	}

	for _, w := range org.Wardens {
		dto.Wardens = append(dto.Wardens, WardenDto{Name: w.Name, Enabled: w.Enabled})
	}

	for _, m := range org.Members {
		dto.Members = append(dto.Members, MemberDto{
			UserID:  m.UserID,
			Email:   m.Email,
			Role:    m.Role,
			AddedAt: m.AddedAt,
		})
	}

	for _, k := range keys {
		dto.ApiKeys = append(dto.ApiKeys, ApiKeyDto{
			Secret:      k.Secret,
			Fingerprint: k.Fingerprint,
			CreatedAt:   k.CreatedAt,
		})
	}

	return dto
}
