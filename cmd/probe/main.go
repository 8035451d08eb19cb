package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/config"
	"github.com/WailSalutem-Health-Care/clinic-datastore/internal/datastore"
)

const exitUnavailable = 2

var errUnavailable = errors.New("datastore unavailable")

// bootstrapFunc is replaced in tests.
var bootstrapFunc = func(ctx context.Context, cfg config.Config, logger zerolog.Logger) *datastore.Store {
	return datastore.Bootstrap(ctx, cfg.Datastore, datastore.WithLogger(logger))
}

func main() {
	err := newRootCmd(os.Stdout).Execute()
	switch {
	case err == nil:
	case errors.Is(err, errUnavailable):
		os.Exit(exitUnavailable)
	default:
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:           "probe",
		Short:         "Check datastore availability and run read-only lookups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Overall timeout")

	withStore := func(run func(ctx context.Context, store *datastore.Store, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := cfg.Log.Logger(cmd.ErrOrStderr())

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			store := bootstrapFunc(ctx, cfg, logger)
			defer store.Close()

			if !store.IsAvailable() {
				d := store.Diagnosis()
				printJSON(cmd.OutOrStdout(), map[string]any{
					"available": false,
					"reason":    d.Reason.String(),
					"detail":    d.Detail,
				})
				return errUnavailable
			}
			return run(ctx, store, args)
		}
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report availability and the number of clinics",
		RunE: withStore(func(ctx context.Context, store *datastore.Store, _ []string) error {
			res := store.Checked().GetAllClinics(ctx)
			report := map[string]any{
				"available": true,
				"clinics":   len(res.Value),
				"status":    res.Status.String(),
			}
			printJSON(rootCmd.OutOrStdout(), report)
			if res.Degraded() {
				return res.Err
			}
			return nil
		}),
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "clinic <code>",
		Short: "Look up a clinic by code",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, store *datastore.Store, args []string) error {
			return report(rootCmd.OutOrStdout(), store.Checked().GetClinicByCode(ctx, args[0]))
		}),
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "patient <id>",
		Short: "Look up a patient by id",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(func(ctx context.Context, store *datastore.Store, args []string) error {
			return report(rootCmd.OutOrStdout(), store.Checked().GetPatientByID(ctx, args[0]))
		}),
	})

	return rootCmd
}

func report[T any](out io.Writer, res datastore.Result[*T]) error {
	if !res.OK() {
		printJSON(out, map[string]any{"status": res.Status.String()})
		if res.Status == datastore.StatusNotFound {
			return fmt.Errorf("not found")
		}
		return res.Err
	}
	printJSON(out, res.Value)
	return nil
}

func printJSON(out io.Writer, v any) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
