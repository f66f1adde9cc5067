package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses duration values
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. The types reflect how the values are used
// in the application: strings for identifiers and secrets, durations
// for lifetimes, ints for costs.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	SessionSecret   string        // secret used to sign session cookies
	BcryptCost      int           // bcrypt cost for password hashing
	OTPTTL          time.Duration // lifetime of an issued one-time code
	SessionTTL      time.Duration // default session lifetime
	RememberMeTTL   time.Duration // session lifetime when remember-me is requested
	CleanupInterval time.Duration // how often stale OTP rows are purged
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
// Lifetimes have defaults matching the reference deployment: 10 minute
// codes, 24 hour sessions, 7 day remember-me sessions, hourly cleanup.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),          // environment (dev/test/prod)
		Port:            must("APP_PORT"),         // port to bind the HTTP server
		DBUser:          must("DB_USER"),          // database user
		DBPass:          os.Getenv("DB_PASS"),     // database password (empty allowed)
		DBHost:          must("DB_HOST"),          // database host
		DBPort:          must("DB_PORT"),          // database port
		DBName:          must("DB_NAME"),          // database name
		SessionSecret:   must("SESSION_SECRET"),   // secret for cookie signing
		BcryptCost:      mustInt("BCRYPT_COST"),   // bcrypt cost factor
		OTPTTL:          time.Duration(envInt("OTP_TTL_MIN", 10)) * time.Minute,
		SessionTTL:      time.Duration(envInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		RememberMeTTL:   time.Duration(envInt("REMEMBER_ME_TTL_DAYS", 7)) * 24 * time.Hour,
		CleanupInterval: envDur("OTP_CLEANUP_INTERVAL", time.Hour),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envInt reads an optional integer variable, falling back to d.
func envInt(key string, d int) int {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

// envDur reads an optional duration variable ("1h", "30m"), falling back to d.
func envDur(key string, d time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
