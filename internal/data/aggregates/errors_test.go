package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want domainagg.ErrorCode
	}{
		{"validation", ValidationError("bad input"), domainagg.CodeValidation},
		{"invariant", InvariantError("broken"), domainagg.CodeInternal},
		{"conflict", ConflictError("dup"), domainagg.CodeConflict},
		{"record not found", fmt.Errorf("lookup: %w", gorm.ErrRecordNotFound), domainagg.CodeNotFound},
		{"canceled", context.Canceled, domainagg.CodeDependency},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"sqlite unique", errors.New("UNIQUE constraint failed: user.email"), domainagg.CodeConflict},
		{"unknown", errors.New("connection refused"), domainagg.CodeDependency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domainagg.CodeOf(MapError("op", tc.in))
			if got != tc.want {
				t.Fatalf("want=%s got=%s", tc.want, got)
			}
		})
	}
}

func TestMapErrorNil(t *testing.T) {
	if MapError("op", nil) != nil {
		t.Fatalf("nil in, nil out")
	}
}

func TestMapErrorPassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeUnauthorized, "op", "not allowed", nil)
	if out := MapError("other", in); out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestIsRetryable(t *testing.T) {
	if !isRetryable(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("serialization failure should be retryable")
	}
	if !isRetryable(context.DeadlineExceeded) {
		t.Fatalf("deadline should be retryable")
	}
	if isRetryable(errors.New("syntax error")) {
		t.Fatalf("syntax error is not retryable")
	}
}
