// Package config loads keyfactory settings from embedded defaults, an
// optional .keyfactory.toml, KEYFACTORY_* environment variables and
// command line overrides, in that order.
package config
