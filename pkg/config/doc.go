// Package config defines Saturn's configuration model.
//
// Configuration is loaded from a YAML file, filled in with defaults,
// optionally overridden by SATURN_-prefixed environment variables, and
// validated as a whole. Validation collects every problem instead of
// stopping at the first one.
package config
