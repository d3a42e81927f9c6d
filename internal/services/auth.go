package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/platform/ctxutil"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

// JWTClaims are the access token claims. Subject carries the user id.
type JWTClaims struct {
	jwt.RegisteredClaims
}

type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey []byte
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
	return &authService{
		log:          log.With("service", "AuthService"),
		jwtSecretKey: []byte(jwtSecretKey),
	}
}

// SetContextFromToken verifies an HS256 access token and stores the acting
// user on the returned context.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	const op = "AuthService.SetContextFromToken"
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, domainagg.NewError(domainagg.CodeUnauthorized, op, "Authentication failed!", nil)
	}
	if len(as.jwtSecretKey) == 0 {
		return ctx, domainagg.NewError(domainagg.CodeInternal, op, "token verification is not configured", nil)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return as.jwtSecretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		as.log.Debug("Rejected access token", "error", err)
		return ctx, domainagg.NewError(domainagg.CodeUnauthorized, op, "Authentication failed!", fmt.Errorf("parse token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctx, domainagg.NewError(domainagg.CodeUnauthorized, op, "Authentication failed!", errors.New("invalid or expired token"))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return ctx, domainagg.NewError(domainagg.CodeUnauthorized, op, "Authentication failed!", fmt.Errorf("invalid user id in token: %w", err))
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
	}), nil
}
