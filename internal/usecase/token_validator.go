package usecase

import (
	"github.com/bahooo22/HannaWhishlist/internal/pkg/jwt"
)

// TokenValidator provides bearer token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (clientID string, scope string, err error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (string, string, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return "", "", err
	}

	return claims.Subject, claims.Scope, nil
}
