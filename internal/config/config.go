// Package config loads the gateway's process configuration (SPEC_FULL
// A1): bus device paths keyed by a numeric id, plus a handful of
// collaborator-level settings. A .env file is optionally loaded first
// (github.com/joho/godotenv), but the real process environment always
// takes precedence, matching the teacher pack's habit (runtimeEnv.LoadEnv
// in ClusterCockpit-cc-backend) of treating a dotenv file as a default,
// not an override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"sensorgate/gateway/gwerr"
)

// Config is the gateway server's full process configuration.
type Config struct {
	HTTPAddr     string
	DBPath       string
	PollInterval time.Duration
}

// Load reads .env (if present, ignored if missing) and then the
// collaborator-level required variables. Returns ConfigurationError on any
// missing or unparseable required variable.
func Load() (Config, error) {
	_ = godotenv.Load() // best-effort; real env vars always win regardless

	addr, ok := os.LookupEnv("GATEWAY_HTTP_ADDR")
	if !ok || addr == "" {
		return Config{}, fmt.Errorf("config: GATEWAY_HTTP_ADDR: %w", gwerr.ConfigurationError)
	}

	dbPath, ok := os.LookupEnv("GATEWAY_DB_PATH")
	if !ok || dbPath == "" {
		return Config{}, fmt.Errorf("config: GATEWAY_DB_PATH: %w", gwerr.ConfigurationError)
	}

	pollRaw, ok := os.LookupEnv("GATEWAY_POLL_INTERVAL")
	if !ok || pollRaw == "" {
		return Config{}, fmt.Errorf("config: GATEWAY_POLL_INTERVAL: %w", gwerr.ConfigurationError)
	}
	poll, err := time.ParseDuration(pollRaw)
	if err != nil {
		return Config{}, fmt.Errorf("config: GATEWAY_POLL_INTERVAL %q: %w", pollRaw, gwerr.ConfigurationError)
	}

	return Config{HTTPAddr: addr, DBPath: dbPath, PollInterval: poll}, nil
}

// SerialPortPath returns the configured device path for serial bus id
// (SERIAL_PORT_<N>_PATH), per spec §6.
func SerialPortPath(busID uint32) (string, bool) {
	return os.LookupEnv(fmt.Sprintf("SERIAL_PORT_%d_PATH", busID))
}

// I2CBusPath returns the configured device path for I2C bus id
// (I2C_BUS_<N>_PATH), per spec §6.
func I2CBusPath(busID uint32) (string, bool) {
	return os.LookupEnv(fmt.Sprintf("I2C_BUS_%d_PATH", busID))
}

// ParseBusID is a small shared helper for admin tooling that accepts a bus
// id on the command line.
func ParseBusID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("config: bad bus id %q: %w", s, gwerr.ConfigurationError)
	}
	return uint32(v), nil
}
