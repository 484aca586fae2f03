package config

import "os"

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Crypto   CryptoConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins string
}

// AuthConfig is the shared verification contract: the business API must be
// configured with the same Secret/Issuer/Audience triple to validate tokens
// issued here without a network round-trip.
type AuthConfig struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  string
	RefreshTTL string
}

type CryptoConfig struct {
	EncryptionKey string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

func Load() Config {
	return Config{
		Server: ServerConfig{
			Port:        getenv("PORT", "8080"),
			CORSOrigins: os.Getenv("CORS_ORIGINS"),
		},
		Auth: AuthConfig{
			Secret:     os.Getenv("JWT_SECRET"),
			Issuer:     getenv("JWT_ISSUER", "auth-api"),
			Audience:   getenv("JWT_AUDIENCE", "symfony-api"),
			AccessTTL:  getenv("JWT_ACCESS_TTL", "2h"),
			RefreshTTL: getenv("REFRESH_TOKEN_TTL", "168h"),
		},
		Crypto: CryptoConfig{
			EncryptionKey: os.Getenv("ENCRYPTION_KEY"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Host:        getenv("PGHOST", "localhost"),
			Port:        getenv("PGPORT", "5432"),
			User:        os.Getenv("PGUSER"),
			Password:    os.Getenv("PGPASSWORD"),
			Database:    os.Getenv("PGDATABASE"),
			SSLMode:     getenv("PGSSLMODE", "disable"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
