package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// OTPMock accepts any well-formed OTP at login (dev/demo mode).
	OTPMock bool

	// ShareCountryCode prefixes customer phone numbers in share links.
	ShareCountryCode string

	// TimeZone sets the calendar used for daily/monthly boundaries.
	TimeZone string

	// SettleDelay simulates payment settlement before a bill is archived.
	SettleDelay time.Duration
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8081"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		OTPMock:          getEnv("OTP_MOCK", "true") == "true",
		ShareCountryCode: getEnv("SHARE_COUNTRY_CODE", "91"),
		TimeZone:         getEnv("BILLING_TZ", "Asia/Kolkata"),
		SettleDelay:      time.Duration(getEnvInt("SETTLE_DELAY_MS", 1000)) * time.Millisecond,
	}
}

// Location resolves the configured time zone, falling back to IST when the
// zone database is unavailable.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.FixedZone("IST", 5*3600+1800)
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
