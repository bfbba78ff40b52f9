package storage

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// mysqlDSN normalizes a go-sql-driver DSN and fills in the password.
func mysqlDSN(dsn, password string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.Passwd == "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// postgresDSN accepts a postgres:// URL or a key=value string and returns
// the key=value form with the password set.
func postgresDSN(dsn, password string) (string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse postgres url: %w", err)
		}
		if _, set := u.User.Password(); !set && password != "" && u.User != nil {
			u.User = url.UserPassword(u.User.Username(), password)
		}
		conv, err := pq.ParseURL(u.String())
		if err != nil {
			return "", fmt.Errorf("parse postgres url: %w", err)
		}
		return conv, nil
	}
	if password != "" && !strings.Contains(dsn, "password=") {
		dsn = strings.TrimSpace(dsn) + " password=" + quoteValue(password)
	}
	if !strings.Contains(dsn, "sslmode=") {
		dsn += " sslmode=disable"
	}
	return strings.TrimSpace(dsn), nil
}

// quoteValue quotes a libpq connection-string value.
func quoteValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
