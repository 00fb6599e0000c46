/*
Package config loads service settings from an optional .env file and the
environment.

KEYS:
  DB_PATH                 SQLite file               (incidencias.db)
  PORT                    HTTP port                 (8080)
  ADMIN_PIN               Consolidated view PIN     (empty: no PIN)
  SEEDS_PATH              Plant seed list           (seeds/plants.json)
  LOG_LEVEL, LOG_FORMAT   logrus level and format   (info, text)
  VACATION_STRICT         Fail reports on bad rows  (false)
  VACATION_EXPIRED_STATE  Separate expired balances (false)
  EXPIRY_CHECK_INTERVAL   Expiry watcher period     (0: disabled)
  CORS_ORIGINS            Comma-separated origins   (*)

Command-line flags override these values in cmd/server and cmd/hrctl.
*/
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/incidencias/vacation"
)

// Config holds the service settings.
type Config struct {
	DBPath    string
	Port      string
	AdminPIN  string
	SeedsPath string

	LogLevel  string
	LogFormat string

	VacationStrict       bool
	VacationExpiredState bool
	ExpiryCheckInterval  time.Duration

	CORSOrigins []string
}

// Load reads envFile when it exists, then the environment. A missing file
// is not an error; a malformed one is.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}
	return FromEnv(), nil
}

// FromEnv reads the settings from the environment only.
func FromEnv() Config {
	return Config{
		DBPath:               getEnv("DB_PATH", "incidencias.db"),
		Port:                 getEnv("PORT", "8080"),
		AdminPIN:             strings.TrimSpace(getEnv("ADMIN_PIN", "")),
		SeedsPath:            getEnv("SEEDS_PATH", "seeds/plants.json"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		VacationStrict:       getEnvAsBool("VACATION_STRICT", false),
		VacationExpiredState: getEnvAsBool("VACATION_EXPIRED_STATE", false),
		ExpiryCheckInterval:  getEnvAsDuration("EXPIRY_CHECK_INTERVAL", 0),
		CORSOrigins:          getEnvAsList("CORS_ORIGINS", []string{"*"}),
	}
}

// VacationPolicy derives the vacation engine policy from the settings.
func (c Config) VacationPolicy() vacation.Policy {
	p := vacation.DefaultPolicy()
	p.Strict = c.VacationStrict
	p.DistinguishExpired = c.VacationExpiredState
	return p
}

// PINEnabled reports whether the consolidated view requires a PIN.
func (c Config) PINEnabled() bool {
	return c.AdminPIN != ""
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	return defaultVal
}

// getEnvAsDuration accepts Go durations ("1h", "30m") and bare seconds.
func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := strings.TrimSpace(getEnv(name, ""))
	if valStr == "" {
		return defaultVal
	}
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	if secs, err := strconv.Atoi(valStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func getEnvAsList(name string, defaultVal []string) []string {
	valStr := getEnv(name, "")
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
