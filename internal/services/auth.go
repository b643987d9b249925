package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

// JWTClaims is the token payload issued by the account service.
type JWTClaims struct {
	UserID      string `json:"id,omitempty"`
	Email       string `json:"email,omitempty"`
	AccountType string `json:"accountType"`
	jwt.RegisteredClaims
}

// AuthService verifies bearer tokens into an actor. Session issuance lives in
// the account service; IssueToken exists for tooling and tests.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	ParseActor(tokenString string) (ctxutil.Actor, error)
	IssueToken(actor ctxutil.Actor, email string, ttl time.Duration) (string, error)
}

type authService struct {
	log          *logger.Logger
	jwtSecretKey string
}

func NewAuthService(log *logger.Logger, jwtSecretKey string) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{log: serviceLog, jwtSecretKey: jwtSecretKey}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	actor, err := as.ParseActor(tokenString)
	if err != nil {
		return ctx, err
	}
	return ctxutil.WithActor(ctx, actor), nil
}

func (as *authService) ParseActor(tokenString string) (ctxutil.Actor, error) {
	if as.jwtSecretKey == "" {
		return ctxutil.Actor{}, apierr.Unauthorized("token verification not configured")
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return ctxutil.Actor{}, apierr.Unauthorized("failed to parse token: %v", err)
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return ctxutil.Actor{}, apierr.Unauthorized("invalid or expired token")
	}

	rawID := claims.UserID
	if rawID == "" {
		rawID = claims.Subject
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return ctxutil.Actor{}, apierr.Unauthorized("invalid user id in token")
	}
	role, err := parseRole(claims.AccountType)
	if err != nil {
		return ctxutil.Actor{}, err
	}
	return ctxutil.Actor{UserID: userID, Role: role}, nil
}

func (as *authService) IssueToken(actor ctxutil.Actor, email string, ttl time.Duration) (string, error) {
	if actor.IsZero() {
		return "", fmt.Errorf("issue token: missing user id")
	}
	now := time.Now()
	claims := JWTClaims{
		UserID:      actor.UserID.String(),
		Email:       email,
		AccountType: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func parseRole(raw string) (ctxutil.Role, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin":
		return ctxutil.RoleAdmin, nil
	case "instructor":
		return ctxutil.RoleInstructor, nil
	case "student":
		return ctxutil.RoleStudent, nil
	default:
		return "", apierr.Unauthorized("unknown account type %q", raw)
	}
}
