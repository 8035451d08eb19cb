package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/config"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
)

// stubBackend implements only the reads the probe uses.
type stubBackend struct {
	datastore.Backend
	clinics []datastore.Clinic
}

func (s stubBackend) ListClinics(context.Context) ([]datastore.Clinic, error) {
	return s.clinics, nil
}

func (s stubBackend) GetClinicByCode(_ context.Context, code string) (*datastore.Clinic, error) {
	for _, c := range s.clinics {
		if c.ClinicCode == code {
			return &c, nil
		}
	}
	return nil, nil
}

func useStore(t *testing.T, store *datastore.Store) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	orig := bootstrapFunc
	bootstrapFunc = func(context.Context, config.Config, zerolog.Logger) *datastore.Store {
		return store
	}
	t.Cleanup(func() { bootstrapFunc = orig })
}

func execute(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatus_Unavailable(t *testing.T) {
	useStore(t, datastore.Disabled(datastore.Diagnosis{
		Reason: datastore.ReasonConfigurationAbsent,
		Detail: "missing DATASTORE_URL",
	}))

	out, err := execute("status")

	if !errors.Is(err, errUnavailable) {
		t.Fatalf("Expected errUnavailable, got %v", err)
	}
	if !strings.Contains(out, `"reason": "configuration_absent"`) {
		t.Errorf("Expected reason in output, got %s", out)
	}
	if !strings.Contains(out, "missing DATASTORE_URL") {
		t.Errorf("Expected detail in output, got %s", out)
	}
}

func TestStatus_Available(t *testing.T) {
	useStore(t, datastore.New(stubBackend{clinics: []datastore.Clinic{
		{ClinicCode: "ABC"}, {ClinicCode: "DEF"},
	}}))

	out, err := execute("status")

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, `"clinics": 2`) {
		t.Errorf("Expected clinic count, got %s", out)
	}
}

func TestClinicLookup(t *testing.T) {
	useStore(t, datastore.New(stubBackend{clinics: []datastore.Clinic{
		{ClinicCode: "ABC", Name: "North"},
	}}))

	out, err := execute("clinic", "abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, `"name": "North"`) {
		t.Errorf("Expected clinic in output, got %s", out)
	}

	out, err = execute("clinic", "zzz")
	if err == nil {
		t.Fatal("Expected error for unknown clinic")
	}
	if !strings.Contains(out, `"status": "not_found"`) {
		t.Errorf("Expected not_found status, got %s", out)
	}
}

func TestClinicLookup_RequiresArg(t *testing.T) {
	useStore(t, datastore.New(stubBackend{}))

	if _, err := execute("clinic"); err == nil {
		t.Error("Expected argument error")
	}
}
