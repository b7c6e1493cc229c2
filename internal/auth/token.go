package auth

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// EstimateExpiry extracts the exp claim from an access token without verifying
// its signature. The gateway never holds the signing secret; the estimate only
// drives proactive renewal, the server's 401 stays authoritative.
func EstimateExpiry(tokenStr string) *time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time
	return &t
}
