package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", domainagg.NewError(domainagg.CodeValidation, "op", "Invalid inputs passed, please check your data.", nil), http.StatusUnprocessableEntity, "validation", "Invalid inputs passed, please check your data."},
		{"not found", domainagg.NewError(domainagg.CodeNotFound, "op", "Could not find place for the provided id.", nil), http.StatusNotFound, "not_found", "Could not find place for the provided id."},
		{"unauthorized", fmt.Errorf("wrapped: %w", domainagg.NewError(domainagg.CodeUnauthorized, "op", "nope", nil)), http.StatusUnauthorized, "unauthorized", "nope"},
		{"conflict", domainagg.NewError(domainagg.CodeConflict, "op", "dup", nil), http.StatusConflict, "conflict", "dup"},
		{"dependency", domainagg.NewError(domainagg.CodeDependency, "op", "Could not find location for the specified address.", nil), http.StatusInternalServerError, "dependency", "Could not find location for the specified address."},
		{"wrapped driver error", domainagg.Wrap(domainagg.CodeDependency, "op", errors.New("dial tcp 10.0.0.1:5432: connect: connection refused")), http.StatusInternalServerError, "dependency", DefaultMessage},
		{"unclassified", errors.New("pq: connection refused"), http.StatusInternalServerError, "dependency", DefaultMessage},
		{"api error passthrough", WithMessage(http.StatusNotFound, "not_found", "Could not find this route."), http.StatusNotFound, "not_found", "Could not find this route."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.in)
			if got.Status != tc.wantStatus || got.Code != tc.wantCode || got.Error() != tc.wantMsg {
				t.Fatalf("want=(%d,%s,%q) got=(%d,%s,%q)", tc.wantStatus, tc.wantCode, tc.wantMsg, got.Status, got.Code, got.Error())
			}
		})
	}
	if FromError(nil) != nil {
		t.Fatalf("nil in, nil out")
	}
}
