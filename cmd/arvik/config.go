// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/arvik

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Environment variables read at startup.
const (
	envDeterministic = "ARVIK_DETERMINISTIC"
	envLogLevel      = "ARVIK_LOG_LEVEL"
	envLock          = "ARVIK_LOCK"
)

// config holds environment-provided defaults; flags override them.
type config struct {
	logLevel      zerolog.Level
	deterministic bool
	lock          bool
}

// loadConfig reads defaults from the environment.
func loadConfig() config {
	level, err := parseLogLevel(getEnvString(envLogLevel, "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	return config{
		logLevel:      level,
		deterministic: getEnvBool(envDeterministic, false),
		lock:          getEnvBool(envLock, true),
	}
}

// parseLogLevel maps a level name to a zerolog level.
func parseLogLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "disabled", "none", "off":
		return zerolog.Disabled, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error, disabled", level)
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
