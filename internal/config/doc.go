// Package config loads the service configuration with viper.
//
// Values come from built-in defaults, an optional config.yaml and HEROES_*
// environment variables, in increasing order of precedence. A .env file is
// loaded into the environment first when present. Nested keys map to
// variables by joining with underscores:
//
//	HEROES_SERVER_ADDR=:9090
//	HEROES_PRIMARY_DSN=postgres://...
//	HEROES_CACHE_SLIDING_EXPIRATION=90s
package config
