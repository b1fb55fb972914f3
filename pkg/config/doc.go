// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each component declares its own Config struct with `env` tags; the
// entrypoint loads them independently so packages stay decoupled from a
// central configuration type.
package config
