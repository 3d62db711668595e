package models

import (
	"crypto/sha256"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// ApiKey is a reference to a credential issued for an organization. Issuance
// happens outside this package; the key material is carried as an opaque
// secret plus a fingerprint for display and audit logs.
type ApiKey struct {
	KeyID       uuid.UUID // UUIDv7
	OrgID       uuid.UUID // UUIDv7, FK to organizations
	Secret      string    // opaque, issued externally
	Fingerprint string    // Base58-encoded SHA256(Secret)
	CreatedAt   time.Time
}

// NewApiKey wraps an externally issued secret as a key reference for the
// given organization.
func NewApiKey(orgID uuid.UUID, secret string) *ApiKey {
	return &ApiKey{
		KeyID:       uuid.Must(uuid.NewV7()),
		OrgID:       orgID,
		Secret:      secret,
		Fingerprint: KeyFingerprint(secret),
		CreatedAt:   time.Now().UTC(),
	}
}

// KeyFingerprint computes the base58-encoded SHA-256 fingerprint of a secret.
// Fingerprints are safe to log where secrets are not.
func KeyFingerprint(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return base58.Encode(hash[:])
}
