package endpoints

import (
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/papertree/internal/api"
	"github.com/jackzampolin/papertree/internal/metrics"
	"github.com/jackzampolin/papertree/internal/svcctx"
)

// MetricsResponse is per-stage timing plus the most recent failures.
type MetricsResponse struct {
	Stages   map[string]*metrics.DetailedStats `json:"stages"`
	Failures []metrics.Metric                  `json:"failures"`
}

// MetricsEndpoint handles GET /api/metrics.
type MetricsEndpoint struct{}

func (e *MetricsEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/api/metrics", e.handler
}

func (e *MetricsEndpoint) RequiresInit() bool { return false }

func (e *MetricsEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	rec := svcctx.MetricsFrom(r.Context())
	if rec == nil {
		writeError(w, http.StatusServiceUnavailable, "metrics not initialized")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("failures"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid failures limit")
			return
		}
		limit = n
	}

	f := metrics.Filter{
		Source: r.URL.Query().Get("source"),
		Stage:  r.URL.Query().Get("stage"),
	}
	resp := MetricsResponse{
		Stages:   rec.StageStats(f),
		Failures: []metrics.Metric{},
	}
	if limit > 0 {
		failed := false
		f.Success = &failed
		resp.Failures = append(resp.Failures, rec.List(f, limit)...)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (e *MetricsEndpoint) Command(getServerURL func() string) *cobra.Command {
	var stage string
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show stage and OCR timings across builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp MetricsResponse
			if err := client.Get(cmd.Context(), "/api/metrics?stage="+stage, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&stage, "stage", "", "Only show this stage (e.g. gaps, ocr, build)")
	return cmd
}
