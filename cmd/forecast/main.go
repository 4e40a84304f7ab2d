// Command forecast prints a weather-annotated itinerary for one trip.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"route-weather-service/internal/api/dto"
	"route-weather-service/internal/app"
	"route-weather-service/internal/config"
	"route-weather-service/internal/domain"
	"route-weather-service/internal/platform/logging"
	"route-weather-service/internal/services"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "forecast:", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	flags := pflag.NewFlagSet("forecast", pflag.ContinueOnError)
	origin := flags.String("origin", "", "starting address or \"lat,lon\"")
	destination := flags.String("destination", "", "destination address or \"lat,lon\"")
	depart := flags.String("depart", "", "local departure time as HH:MM")
	asJSON := flags.Bool("json", false, "print JSON instead of a table")
	flags.Float64("step-km", 10, "distance between sampled waypoints")
	flags.Int("workers", 4, "concurrent waypoint lookups")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *origin == "" || *destination == "" || *depart == "" {
		flags.Usage()
		return fmt.Errorf("--origin, --destination and --depart are required")
	}

	v := viper.New()
	binds := map[string]string{
		"forecast.step_km": "step-km",
		"forecast.workers": "workers",
		"log.level":        "log-level",
	}
	for key, name := range binds {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	cfg, err := config.LoadWith(v)
	if err != nil {
		return err
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pipeline, cleanup, err := app.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	it, err := pipeline.ForecastRoute(ctx, services.ForecastRequest{
		Origin:      *origin,
		Destination: *destination,
		StepKm:      cfg.Forecast.StepKm,
		StartTime:   *depart,
	})
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(dto.NewForecastResponse(it))
	}
	return printTable(out, it)
}

func printTable(out io.Writer, it domain.Itinerary) error {
	fmt.Fprintf(out, "%s -> %s: %.1f km, %.0f min\n\n", it.Origin, it.Destination, it.TotalDistanceKm, it.TotalDurationMin)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KM\tETA\tPLACE\tFORECAST\tTEMP")
	for _, e := range it.Entries {
		fmt.Fprintf(tw, "%.1f\t%s\t%s\t%s\t%s\n", e.DistanceKm, e.ETA, e.Place, e.Forecast.Description, e.Forecast.Temperature)
	}
	return tw.Flush()
}
