package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/kmcheng/discusshub-backend/env"
)

func genAccessToken(aud, sub, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp":  time.Now().Add(12 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
		"iss":  "discusshub",
		"aud":  aud,
		"sub":  sub,
		"role": role,
	})
	return token.SignedString([]byte(env.HS256_SECRET))
}
