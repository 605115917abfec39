// Package config provides configuration loading and validation for the echo agent.
// It handles YAML-based configuration with struct validation and exposes derived
// values (buffer capacities, debounce runs, playback rates) in sample units.
package config
