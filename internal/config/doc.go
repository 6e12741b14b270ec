// Package config defines configuration structures for biofetch.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (BIOFETCH_ prefix)
//   - YAML or TOML configuration file
//
// Later sources override earlier ones: defaults, file, environment, flags.
//
// # Example
//
//	structure_url: https://files.rcsb.org/download/
//	entrez:
//	  email: someone@example.org
//	  api_key: 0123456789abcdef
//	sequence_dir: sequences
//	combined_name: seq
//	max_body_size: 64MB
//	timeout: 30s
//	retry:
//	  attempts: 2
//	  backoff: 1s
//	log:
//	  level: debug
//	  format: json
package config
