package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/gincana-dev/gincana-go-api/internal/models"
)

func (s *Service) issueToken(profile models.UserProfile) (string, error) {
	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":   profile.ID,
		"email": profile.Email,
		"role":  profile.Role,
		"iat":   now.Unix(),
		"exp":   now.Add(s.tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
