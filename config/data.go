package config

import "github.com/spf13/viper"

// Data represents the data layer configuration.
type Data struct {
	MongoDB *MongoDB
	Redis   *Redis
}

// MongoDB holds the document store connection settings.
type MongoDB struct {
	URI      string
	Database string
}

// Redis holds the ephemeral store connection settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

func getDataConfig(v *viper.Viper) *Data {
	return &Data{
		MongoDB: &MongoDB{
			URI:      v.GetString("data.mongodb.uri"),
			Database: v.GetString("data.mongodb.database"),
		},
		Redis: &Redis{
			Addr:     v.GetString("data.redis.addr"),
			Password: v.GetString("data.redis.password"),
			DB:       v.GetInt("data.redis.db"),
		},
	}
}
