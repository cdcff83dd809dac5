// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A .env file may seed the environment first, and any field tagged with env can be
// overridden afterwards with a VAXCHART_ variable, e.g. VAXCHART_SERVER_PORT=9000 or
// VAXCHART_DATABASE_TIMESCALE_HOST=db.
package config
