package models

import "time"

// Identity is the stored account record. PasswordHash and Salt never leave
// the credential services; use Public before handing a value to callers.
type Identity struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash []byte
	Salt         []byte
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicIdentity is the allowlisted view of an Identity.
type PublicIdentity struct {
	ID          string
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (i *Identity) Public() *PublicIdentity {
	return &PublicIdentity{
		ID:          i.ID,
		Email:       i.Email,
		DisplayName: i.DisplayName,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// IdentityUpdate lists the mutable fields of an Identity. Nil fields are
// left unchanged; UpdatedAt is always written. PasswordHash and Salt must be
// set together.
type IdentityUpdate struct {
	DisplayName  *string
	PasswordHash []byte
	Salt         []byte
	UpdatedAt    time.Time
}
