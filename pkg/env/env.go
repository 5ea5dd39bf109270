// Package env has small helpers for reading process environment
// variables outside the envconfig-managed configuration.
package env

import "os"

// Get returns the value of the given environment variable, or fallback
// when it is unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
