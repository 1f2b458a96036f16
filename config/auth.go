package config

import "github.com/spf13/viper"

// Auth holds token verification settings.
type Auth struct {
	JWTSecret string
}

func getAuthConfig(v *viper.Viper) *Auth {
	return &Auth{
		JWTSecret: v.GetString("auth.jwt_secret"),
	}
}
