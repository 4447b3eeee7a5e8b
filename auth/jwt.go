package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// IssueToken signs a stateless HS256 identity token for the given
// username. There is no expiry and no revocation: the token is only an
// identity claim, not a session.
func IssueToken(secret, username string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("AUTH_SECRET is not set")
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// UsernameFromToken validates an identity token and returns its subject.
func UsernameFromToken(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("AUTH_SECRET is not set")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}
