package config

import "github.com/spf13/viper"

// Logger logger config struct
type Logger struct {
	Level         int
	Format        string
	Output        string
	OutputFile    string
	IndexName     string
	Elasticsearch *Elasticsearch
}

// Elasticsearch holds the optional log shipping target.
type Elasticsearch struct {
	Addresses []string
	Username  string
	Password  string
}

func getLoggerConfig(v *viper.Viper) *Logger {
	return &Logger{
		Level:      v.GetInt("logger.level"),
		Format:     v.GetString("logger.format"),
		Output:     v.GetString("logger.output"),
		OutputFile: v.GetString("logger.output_file"),
		IndexName:  v.GetString("app_name") + "_log",
		Elasticsearch: &Elasticsearch{
			Addresses: v.GetStringSlice("logger.elasticsearch.addresses"),
			Username:  v.GetString("logger.elasticsearch.username"),
			Password:  v.GetString("logger.elasticsearch.password"),
		},
	}
}
