package kernel

import (
	"fmt"

	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned by Validate for a zero-value UUID.
// Every identifier in the model must come from one of the constructors.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID identifies orders, agents, and vendors throughout the model. It wraps
// github.com/google/uuid behind a value object so that a zero value is
// detectably invalid instead of silently equal to the nil UUID.
//
// UUID is immutable and safe to copy, compare, and use as a map key.
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random version-4 identifier. This is how new orders,
// agents, and vendors get their IDs.
func NewUUID() UUID {
	return UUID{
		id: uuid.New(),
	}
}

// UUIDFromString parses the textual form of an identifier, as received in
// request paths and bodies. Any format uuid.Parse accepts is accepted here,
// including braced and urn:uuid: forms.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	return UUID{id: id}, nil
}

// UUIDFromBytes reconstructs an identifier from its 16-byte binary form,
// typically when reading rows that store IDs as binary. The nil UUID is
// rejected the same way a zero value is.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}

	return newID, nil
}

// String returns the canonical hyphenated form, which is also what gets
// persisted and logged.
func (u UUID) String() string {
	return u.id.String()
}

// Bytes exposes the wrapped uuid.UUID for the rare integration that needs
// it, such as binary column scanning. Prefer String elsewhere.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual reports whether two identifiers name the same thing.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate returns ErrUUIDIsNotConstructed for the zero value (and for the
// nil UUID, which is indistinguishable from it). Constructors and command
// validation call this to catch identifiers that skipped construction.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
