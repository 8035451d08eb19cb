package datastore

import (
	"context"
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/db"
)

// Config holds the remote backend settings. URL and ServiceKey are both
// required for the Store to become available. ServiceUser, when set, wins
// over a user in URL; with neither, db.DefaultServiceUser is used.
type Config struct {
	URL            string        `env:"URL" yaml:"url"`
	ServiceKey     string        `env:"SERVICE_KEY" yaml:"service_key"`
	ServiceUser    string        `env:"SERVICE_USER" yaml:"service_user"`
	Schema         string        `env:"SCHEMA" envDefault:"public" yaml:"schema"`
	MaxOpenConns   int           `env:"MAX_OPEN_CONNS" envDefault:"25" yaml:"max_open_conns"`
	MaxIdleConns   int           `env:"MAX_IDLE_CONNS" envDefault:"5" yaml:"max_idle_conns"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s" yaml:"connect_timeout"`
	VerifyOnStart  bool          `env:"VERIFY_ON_START" envDefault:"false" yaml:"verify_on_start"`
}

// Reason names the bootstrap precondition that failed.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonDependencyMissing
	ReasonConfigurationAbsent
	ReasonConstructionFailure
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonDependencyMissing:
		return "dependency_missing"
	case ReasonConfigurationAbsent:
		return "configuration_absent"
	case ReasonConstructionFailure:
		return "construction_failure"
	default:
		return "unknown"
	}
}

// Diagnosis records the outcome of Bootstrap.
type Diagnosis struct {
	Available bool
	Reason    Reason
	Detail    string
	Err       error
}

// Seams replaced in tests.
var (
	driverRegistered = db.DriverRegistered
	openDB           = db.Open
)

// Bootstrap attempts, once, to construct the remote backend from cfg. It
// always returns a Store: when a precondition fails the Store is unavailable
// and the reason is logged a single time. There are no retries.
func Bootstrap(ctx context.Context, cfg Config, opts ...Option) *Store {
	s := newStore(disabledBackend{}, Diagnosis{}, nil, opts...)
	logger := s.logger

	unavailable := func(d Diagnosis) *Store {
		evt := logger.Warn().Str("reason", d.Reason.String())
		if d.Err != nil {
			evt = evt.Err(d.Err)
		}
		evt.Msg("datastore unavailable: " + d.Detail)
		s.diagnosis = d
		return s
	}

	if !driverRegistered(db.DriverName) {
		return unavailable(Diagnosis{
			Reason: ReasonDependencyMissing,
			Detail: "database driver " + db.DriverName + " is not registered",
		})
	}

	var missing []string
	if strings.TrimSpace(cfg.URL) == "" {
		missing = append(missing, "DATASTORE_URL")
	}
	if strings.TrimSpace(cfg.ServiceKey) == "" {
		missing = append(missing, "DATASTORE_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return unavailable(Diagnosis{
			Reason: ReasonConfigurationAbsent,
			Detail: "missing " + strings.Join(missing, " and "),
		})
	}

	handle, err := openDB(ctx, db.Options{
		URL:             strings.TrimSpace(cfg.URL),
		User:            cfg.ServiceUser,
		Password:        cfg.ServiceKey,
		ApplicationName: "clinic-datastore",
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnectTimeout:  cfg.ConnectTimeout,
		Verify:          cfg.VerifyOnStart,
		Logger:          logger,
	})
	if err != nil {
		return unavailable(Diagnosis{
			Reason: ReasonConstructionFailure,
			Detail: "could not construct database handle",
			Err:    err,
		})
	}

	s.backend = NewRepository(handle, cfg.Schema)
	s.available = true
	s.diagnosis = Diagnosis{Available: true}
	s.closer = handle

	logger.Info().Str("schema", cfg.Schema).Msg("✓ datastore available")
	return s
}
