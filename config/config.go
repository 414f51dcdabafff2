package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

type AppConfig struct {
	Port           string
	DBDriver       string // postgres|sqlite
	DatabaseURL    string
	DBPath         string
	DBMaxOpenConns int
	SizeDiagnostic bool
	FormulaStrict  bool
	LogLevel       string
}

func Load() AppConfig {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debugf("[cfg] no .env file loaded: %v", err)
	}

	get := func(k, def string) string {
		if v := os.Getenv(k); v != "" {
			return v
		}
		return def
	}
	cfg := AppConfig{
		Port:           get("PORT", "8080"),
		DBDriver:       strings.ToLower(get("DB_DRIVER", "sqlite")),
		DatabaseURL:    get("DATABASE_URL", ""),
		DBPath:         get("DB_PATH", "fertplan.db"),
		DBMaxOpenConns: atoi(get("DB_MAX_OPEN_CONNS", "1"), 1),
		SizeDiagnostic: get("SIZE_DIAGNOSTIC", "false") == "true",
		FormulaStrict:  get("FORMULA_STRICT", "false") == "true",
		LogLevel:       strings.ToLower(get("LOG_LEVEL", "info")),
	}
	log.Infof("[cfg] %s", cfg)
	return cfg
}

// String keeps the database URL out of logs.
func (c AppConfig) String() string {
	dsn := ""
	if c.DatabaseURL != "" {
		dsn = "(set)"
	}
	return "port=" + c.Port +
		" driver=" + c.DBDriver +
		" database_url=" + dsn +
		" db_path=" + c.DBPath +
		" max_open_conns=" + strconv.Itoa(c.DBMaxOpenConns) +
		" size_diagnostic=" + strconv.FormatBool(c.SizeDiagnostic) +
		" formula_strict=" + strconv.FormatBool(c.FormulaStrict) +
		" log_level=" + c.LogLevel
}

// Level maps LOG_LEVEL onto the gommon levels echo uses.
func (c AppConfig) Level() log.Lvl {
	switch c.LogLevel {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
