package datastore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/messaging"
)

const (
	entityClinic  = "clinic"
	entityPatient = "patient"
)

// Recorder receives one observation per datastore operation.
type Recorder interface {
	RecordDatastoreOperation(ctx context.Context, entity, operation, status string, durationMs float64)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for bootstrap diagnostics and per-call errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithRecorder sets the operation metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		s.recorder = r
	}
}

// WithPublisher sets the publisher that receives created/updated events.
func WithPublisher(p messaging.PublisherInterface) Option {
	return func(s *Store) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		if tp != nil {
			s.tracer = tp.Tracer(tracerName)
		}
	}
}

const tracerName = "github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"

// Store is the data access facade for clinics and patients. Its operations
// never return errors: on any failure they return the operation's neutral
// value (nil, an empty slice or an empty map). Use Checked to see why.
//
// A Store is safe for concurrent use.
type Store struct {
	backend   Backend
	available bool
	diagnosis Diagnosis
	closer    io.Closer

	logger    zerolog.Logger
	recorder  Recorder
	publisher messaging.PublisherInterface
	tracer    trace.Tracer
}

// New wraps an already constructed backend. A nil backend yields an
// unavailable Store.
func New(backend Backend, opts ...Option) *Store {
	if backend == nil {
		return newStore(disabledBackend{}, Diagnosis{
			Reason: ReasonConstructionFailure,
			Detail: "no backend supplied",
		}, nil, opts...)
	}
	return newStore(backend, Diagnosis{Available: true}, nil, opts...)
}

// Disabled returns a Store that reports itself unavailable for reason.
func Disabled(d Diagnosis, opts ...Option) *Store {
	d.Available = false
	return newStore(disabledBackend{}, d, nil, opts...)
}

func newStore(backend Backend, d Diagnosis, closer io.Closer, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		available: d.Available,
		diagnosis: d,
		closer:    closer,
		logger:    zerolog.Nop(),
		publisher: messaging.NopPublisher{},
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// IsAvailable reports whether bootstrap produced a usable backend. It is fixed
// for the lifetime of the Store.
func (s *Store) IsAvailable() bool {
	return s.available
}

// Diagnosis returns the recorded bootstrap outcome.
func (s *Store) Diagnosis() Diagnosis {
	return s.diagnosis
}

// Close releases the underlying connection handle, if any.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Checked exposes the same operations returning a Result, which keeps the
// distinction between "not found" and "backend degraded".
func (s *Store) Checked() *Checked {
	return &Checked{store: s}
}

func (s *Store) GetClinicByCode(ctx context.Context, code string) *Clinic {
	return s.Checked().GetClinicByCode(ctx, code).Value
}

func (s *Store) GetAllClinics(ctx context.Context) map[string]Clinic {
	return s.Checked().GetAllClinics(ctx).Value
}

func (s *Store) CreateClinic(ctx context.Context, clinic Clinic) *Clinic {
	return s.Checked().CreateClinic(ctx, clinic).Value
}

func (s *Store) UpdateClinic(ctx context.Context, code string, updates ClinicUpdate) *Clinic {
	return s.Checked().UpdateClinic(ctx, code, updates).Value
}

func (s *Store) GetPatientByID(ctx context.Context, id string) *Patient {
	return s.Checked().GetPatientByID(ctx, id).Value
}

func (s *Store) GetPatientsByClinicCode(ctx context.Context, code string) []Patient {
	return s.Checked().GetPatientsByClinicCode(ctx, code).Value
}

func (s *Store) CreatePatient(ctx context.Context, patient Patient) *Patient {
	return s.Checked().CreatePatient(ctx, patient).Value
}

func (s *Store) UpdatePatient(ctx context.Context, id string, updates PatientUpdate) *Patient {
	return s.Checked().UpdatePatient(ctx, id, updates).Value
}

// execute runs one backend call behind the availability gate and turns its
// outcome into a Result. It never panics.
func execute[T any](ctx context.Context, s *Store, entity, operation string, neutral func() T, call func(context.Context) (T, error)) (res Result[T]) {
	if !s.available {
		s.logger.Debug().Str("operation", operation).Msg("datastore unavailable, skipping call")
		s.record(ctx, entity, operation, StatusUnavailable, 0)
		return failed(neutral(), StatusUnavailable, ErrUnavailable)
	}

	ctx, span := s.tracer.Start(ctx, "datastore."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("datastore.entity", entity)),
	)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			res = failed(neutral(), StatusTransportError, error(&panicError{value: rec}))
		}
		s.finish(ctx, span, entity, operation, res.Status, res.Err, start)
	}()

	value, err := call(ctx)
	if err != nil {
		return failed(neutral(), Classify(err), err)
	}
	return ok(value)
}

func (s *Store) finish(ctx context.Context, span trace.Span, entity, operation string, status Status, err error, start time.Time) {
	defer s.contain("telemetry", operation)
	defer span.End()

	elapsed := float64(time.Since(start).Microseconds()) / 1000
	span.SetAttributes(attribute.String("datastore.status", status.String()))

	switch status {
	case StatusOK:
		span.SetStatus(codes.Ok, "")
	case StatusNotFound:
		s.logger.Debug().Str("operation", operation).Msg("record not found")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, status.String())
		s.logger.Error().
			Err(err).
			Str("operation", operation).
			Str("status", status.String()).
			Msg("datastore operation failed")
	}

	s.record(ctx, entity, operation, status, elapsed)
}

func (s *Store) record(ctx context.Context, entity, operation string, status Status, durationMs float64) {
	if s.recorder == nil {
		return
	}
	defer s.contain("recorder", operation)
	s.recorder.RecordDatastoreOperation(ctx, entity, operation, status.String(), durationMs)
}

// publish sends an event after a successful write. Failures are logged only.
func (s *Store) publish(ctx context.Context, routingKey string, event any) {
	defer s.contain("publisher", routingKey)
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		s.logger.Warn().Err(err).Str("routing_key", routingKey).Msg("failed to publish event")
	}
}

// contain stops a panic raised by an injected collaborator from reaching the
// caller. It must be deferred directly.
func (s *Store) contain(component, name string) {
	if rec := recover(); rec != nil {
		s.logger.Error().
			Str("component", component).
			Str("operation", name).
			Str("panic", fmt.Sprint(rec)).
			Msg("recovered panic in datastore collaborator")
	}
}
