package jwt

import jwtstd "github.com/golang-jwt/jwt/v5"

// GetTokenID returns the jti claim.
func GetTokenID(claims jwtstd.MapClaims) string {
	if jti, ok := claims["jti"].(string); ok {
		return jti
	}
	return ""
}

// IsAccessToken reports whether the claims describe an access token.
func IsAccessToken(claims jwtstd.MapClaims) bool {
	sub, ok := claims["sub"].(string)
	return ok && sub == "access"
}

// GetPayload returns the nested payload map.
func GetPayload(claims jwtstd.MapClaims) map[string]any {
	if payload, ok := claims["payload"].(map[string]any); ok {
		return payload
	}
	return nil
}

// GetPayloadString returns a string field from the nested payload.
func GetPayloadString(claims jwtstd.MapClaims, key string) string {
	payload := GetPayload(claims)
	if payload == nil {
		return ""
	}
	if val, ok := payload[key].(string); ok {
		return val
	}
	return ""
}
