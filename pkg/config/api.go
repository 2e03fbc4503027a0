package config

import "time"

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment     string
	Addr            string
	MongoURI        string
	MongoDatabase   string
	JWTSecret       string
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:     GetString("APP_ENV", "development"),
		Addr:            GetString("API_ADDR", ":4000"),
		MongoURI:        GetString("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   GetString("MONGODB_DATABASE", "taskflow"),
		JWTSecret:       GetString("JWT_SECRET", "supersecuresecret"),
		SessionTTL:      time.Duration(GetInt("SESSION_TTL_SECONDS", 3600)) * time.Second,
		ShutdownTimeout: time.Duration(GetInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}
