// Package config loads, normalizes, and validates nmsmc configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the NMSMC_PSAR and
// NMSMC_MBINCOMPILER environment overrides. The Config type centralizes the
// staging and state directories, tool locations and timeouts, build options,
// and logging settings the CLI needs.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
