package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// DriverName is the database/sql driver the remote backend is reached through.
const DriverName = "postgres"

// DefaultServiceUser is the privileged role used when neither Options.User
// nor the URL names one.
const DefaultServiceUser = "service_role"

// Options describes how to reach the remote database.
type Options struct {
	// URL is the endpoint in URL form, e.g. postgres://host:5432/clinics?sslmode=require.
	URL string
	// User overrides the user in URL when set. With neither, DefaultServiceUser.
	User string
	// Password is the privileged access key.
	Password string
	// ApplicationName is reported to the server as application_name.
	ApplicationName string

	MaxOpenConns   int
	MaxIdleConns   int
	ConnectTimeout time.Duration

	// Verify pings the server once before returning.
	Verify bool

	Logger zerolog.Logger
}

// DriverRegistered reports whether a database/sql driver called name is linked in.
func DriverRegistered(name string) bool {
	return slices.Contains(sql.Drivers(), name)
}

// BuildDSN returns the connection URL with credentials and connection
// parameters applied. Errors never include the URL, which may carry secrets.
func BuildDSN(opts Options) (string, string, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return "", "", errors.New("invalid database URL (expected postgres://host:port/dbname)")
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", "", fmt.Errorf("unsupported database URL scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", "", errors.New("database URL has no host")
	}

	user := opts.User
	if user == "" && u.User != nil {
		user = u.User.Username()
	}
	if user == "" {
		user = DefaultServiceUser
	}
	u.User = url.UserPassword(user, opts.Password)

	q := u.Query()
	// Timezone is a startup parameter so every pooled connection gets it.
	if q.Get("timezone") == "" {
		q.Set("timezone", "UTC")
	}
	if opts.ApplicationName != "" && q.Get("application_name") == "" {
		q.Set("application_name", opts.ApplicationName)
	}
	if opts.ConnectTimeout > 0 && q.Get("connect_timeout") == "" {
		secs := int(opts.ConnectTimeout / time.Second)
		if secs < 1 {
			secs = 1
		}
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	u.RawQuery = q.Encode()

	dbname := ""
	if len(u.Path) > 1 {
		dbname = u.Path[1:]
	}

	return u.String(), dbname, nil
}

// Open creates a PostgreSQL handle with OpenTelemetry instrumentation.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	dsn, dbname, err := BuildDSN(opts)
	if err != nil {
		return nil, err
	}

	attrs := otelsql.WithAttributes(
		semconv.DBSystemPostgreSQL,
		semconv.DBName(dbname),
	)

	db, err := otelsql.Open(DriverName, dsn, attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := otelsql.RegisterDBStatsMetrics(db, attrs); err != nil {
		opts.Logger.Warn().Err(err).Msg("failed to register database stats metrics")
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)

	if opts.Verify {
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
	}

	opts.Logger.Info().
		Str("database", dbname).
		Bool("verified", opts.Verify).
		Msg("PostgreSQL handle opened (OpenTelemetry enabled)")
	return db, nil
}
