package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/ahrav/go-heat/infrastructure/middleware"
	"github.com/ahrav/go-heat/internal/application"
	"github.com/ahrav/go-heat/internal/domain"
	"github.com/ahrav/go-heat/internal/logging"
	"github.com/ahrav/go-heat/internal/ports"
)

// heatOutput is one heat in the JSON printed by compute and heat.
type heatOutput struct {
	HeatID  int             `json:"heat_id"`
	Results []domain.Result `json:"results"`
}

// run computes the given heats against store and prints them as JSON.
func (c *cli) run(ctx context.Context, cmd *cobra.Command, store ports.HeatStore, heatIDs []int) error {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewPrometheusMetrics(reg)

	engine, err := application.NewEngineFromConfig(c.config,
		application.WithMetrics(metrics),
		application.WithUnitWrapper(middleware.TraceUnits(metrics)),
		application.WithLogger(logging.New("engine")),
	)
	if err != nil {
		return err
	}
	svc, err := application.NewPreliminaryService(store, engine, c.config.Service.MaxConcurrentHeats)
	if err != nil {
		return err
	}

	byHeat, err := svc.ByHeatIDs(ctx, heatIDs)
	if err != nil {
		return err
	}

	out := make([]heatOutput, 0, len(heatIDs))
	for _, id := range heatIDs {
		out = append(out, heatOutput{HeatID: id, Results: byHeat[id]})
	}
	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}

	if c.printStats {
		return writeMetrics(cmd.ErrOrStderr(), reg)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// parseHeatIDs converts positional arguments to heat IDs, dropping
// duplicates while keeping the first occurrence order.
func parseHeatIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid heat id %q", a)
		}
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
