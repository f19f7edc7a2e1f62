// Package config loads runtime configuration for the lab portal client.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. A .env file, when present, and LABPORTAL_* environment variables.
//  4. Command-line flags.
//
// Flags
//
//	-a string   users API base URL
//	-r string   results API base URL
//	-s string   SQLite storage file
//	-mock       serve auth from the local mock backend
//
// # JSON schema
//
// Durations accept strings like "500ms" or integer nanoseconds:
//
//	{
//	  "users_base_url": "http://localhost:8081/api",
//	  "results_base_url": "http://localhost:8083/api",
//	  "mock_mode": true,
//	  "mock_latency": "500ms",
//	  "storage_driver": "sqlite",
//	  "storage_dsn": "~/.labportal/session.db",
//	  "request_timeout": "30s",
//	  "log_level": "info",
//	  "metrics_addr": ":9102"
//	}
package config
