// Package config loads the elephant CLI configuration. Precedence, lowest
// to highest: built-in defaults, config file (JSON or YAML by extension),
// ELEPHANT_* environment variables, command-line flags.
package config
