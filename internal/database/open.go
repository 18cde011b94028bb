package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campusconnect/campus-connect-api/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

func Open(cfg *config.Config) (*gorm.DB, error) {
	return OpenURL(cfg.DatabaseURL)
}

// OpenURL picks the driver from the URL scheme. Postgres is the production
// store; sqlite backs local runs and tests.
func OpenURL(databaseURL string) (*gorm.DB, error) {
	return openURL(databaseURL, slogWriter{})
}

func openURL(databaseURL string, w logger.Writer) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}
	return gorm.Open(dialector, &gorm.Config{
		Logger:         newQueryLogger(w),
		TranslateError: true,
	})
}

// newQueryLogger never renders bound values: lookups are keyed by password
// and reset-token hashes.
func newQueryLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             slowQueryThreshold,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		ParameterizedQueries:      true,
		Colorful:                  false,
	})
}

type slogWriter struct{}

func (slogWriter) Printf(format string, args ...interface{}) {
	slog.Warn("gorm", "detail", strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return nil, fmt.Errorf("database url is empty")
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"), strings.Contains(u, "host="):
		return postgres.Open(u), nil
	case strings.HasPrefix(u, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(u, "sqlite://")), nil
	case strings.HasPrefix(u, "file:"), u == ":memory:":
		return sqlite.Open(u), nil
	default:
		return nil, fmt.Errorf("unsupported database url scheme")
	}
}
