package deploy

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/blogctl/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile exports the report in the node_exporter textfile collector format.
func WriteTextfile(path string, r *Report) error {
	reg := prometheus.NewRegistry()
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blogctl",
		Subsystem: "deploy",
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the last deploy finished.",
	})
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "blogctl",
		Subsystem: "deploy",
		Name:      "last_success",
		Help:      "Whether every step of the last deploy succeeded.",
	})
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blogctl",
		Subsystem: "deploy",
		Name:      "step_duration_seconds",
		Help:      "Duration of each step in the last deploy.",
	}, []string{"step"})
	status := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "blogctl",
		Subsystem: "deploy",
		Name:      "step_status",
		Help:      "Outcome of each step in the last deploy, one series per status.",
	}, []string{"step", "status"})
	reg.MustRegister(lastRun, success, duration, status)

	lastRun.Set(float64(r.FinishedAt.Unix()))
	if r.OK() {
		success.Set(1)
	}
	for _, s := range r.Steps {
		duration.WithLabelValues(s.Name).Set(s.Duration.Seconds())
		for _, st := range []Status{StatusOK, StatusFailed, StatusSkipped} {
			v := 0.0
			if s.Status == st {
				v = 1
			}
			status.WithLabelValues(s.Name, string(st)).Set(v)
		}
	}
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("ensure metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
