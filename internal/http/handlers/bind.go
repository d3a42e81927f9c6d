package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/services"
)

// bindError reports a failed gin binding as a validation error naming the
// offending fields.
func bindError(op string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field())+":"+fe.Tag())
		}
		err = errors.New("invalid fields " + strings.Join(fields, ","))
	}
	return domainagg.NewError(domainagg.CodeValidation, op, services.MsgInvalidInputs, err)
}

// parseID treats a malformed id as an id that matches nothing.
func parseID(op, raw, notFoundMsg string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, domainagg.NewError(domainagg.CodeNotFound, op, notFoundMsg, err)
	}
	return id, nil
}
