// Package config loads application configuration from environment variables
// and an optional .env file.
//
// Defaults are declared as struct tags on the partial config types owned by
// each subsystem (logger, database, esi) and registered in Viper by
// reflection, so environment variables like DATABASE_REPLICA_URL or
// ESI_CONCURRENCY override them without any extra wiring.
package config
