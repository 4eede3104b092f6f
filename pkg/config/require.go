package config

import "log"

// MustNonEmpty aborts startup when a required env value is missing. Config
// problems are fatal at process start, never deferred to the first request.
func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("missing required env %s", envName)
	}
}
