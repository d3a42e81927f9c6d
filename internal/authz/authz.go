// Package authz decides whether an acting user may mutate a resource.
package authz

import (
	"github.com/google/uuid"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

const op = "authz.Authorize"

// Authorize allows the action only when acting is the owner. The zero id
// never owns anything.
func Authorize(owner, acting uuid.UUID) error {
	if acting == uuid.Nil || owner == uuid.Nil {
		return domainagg.NewError(domainagg.CodeUnauthorized, op, "not authenticated", nil)
	}
	if owner != acting {
		return domainagg.NewError(domainagg.CodeUnauthorized, op, "not the owner", nil)
	}
	return nil
}

// AuthorizeWithMessage is Authorize with a caller-facing message on denial.
func AuthorizeWithMessage(owner, acting uuid.UUID, message string) error {
	if err := Authorize(owner, acting); err != nil {
		return domainagg.NewError(domainagg.CodeUnauthorized, op, message, err)
	}
	return nil
}
