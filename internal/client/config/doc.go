// Package config loads runtime configuration for the My Cloud CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the REST API (e.g. http://localhost:8000/api)
//	-o string   public origin share links are resolved against
//	-d string   path of the SQLite file holding the session record
//	-l string   directory downloads are saved into
//	-t int      per-request timeout (seconds)
//	-v string   log level: debug, info, warn, error
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "30s" or
// integer nanoseconds. Absent keys keep their earlier value:
//
//	{
//	  "server_url": "http://localhost:8000/api",
//	  "public_origin": "http://localhost:3000",
//	  "state_db_path": "mycloud.db",
//	  "download_dir": "downloads",
//	  "request_timeout": "30s",
//	  "logout_timeout": "5s",
//	  "log_level": "info"
//	}
//
// When no public origin is configured it is derived from the server URL.
package config
