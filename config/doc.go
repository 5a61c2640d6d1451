// Package config loads service configuration from YAML, .env files and the
// process environment using viper.
//
// Environment variables override file values. Keys are matched by
// lower-casing the variable and trying every split of its underscores
// into nesting levels, so AUTH_JWT_SECRET populates auth.jwt.secret and
// DATABASE_DSN populates database.dsn.
//
//	var cfg MyConfig
//	if err := config.LoadConfig("auth-service", &cfg); err != nil { ... }
package config
