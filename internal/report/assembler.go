// Package report assembles the analysis components into complete,
// timestamped reports. Sections are computed concurrently and a section
// failure never sinks the report: the failing section is omitted and its
// error recorded, so callers always get the parts that worked.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gastos/internal/advisor"
	"gastos/internal/anomaly"
	"gastos/internal/core"
	"gastos/internal/forecast"
	"gastos/internal/profile"
)

// Meta identifies one generated report.
type Meta struct {
	ID          string `json:"id"`
	GeneratedAt string `json:"generado_en"`
}

func newMeta(now time.Time) Meta {
	return Meta{
		ID:          uuid.NewString(),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
}

// sectionErrors collects per-section failures under a lock.
type sectionErrors struct {
	mu   sync.Mutex
	errs map[string]string
}

func newSectionErrors() *sectionErrors {
	return &sectionErrors{errs: make(map[string]string)}
}

func (s *sectionErrors) add(section string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[section] = err.Error()
}

func (s *sectionErrors) result() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs
}

// PredictionReport bundles every forward-looking view of the ledger.
type PredictionReport struct {
	Meta
	ByCategory map[string]forecast.CategoryForecast `json:"por_categoria,omitempty"`
	Monthly    *forecast.AggregateForecast          `json:"mensual,omitempty"`
	Anomalies  *anomaly.Result                      `json:"anomalias,omitempty"`
	Models     *forecast.Comparison                 `json:"comparacion_modelos,omitempty"`
	Errors     map[string]string                    `json:"errores,omitempty"`
}

// Predictions runs the forecasting sections concurrently over one ledger.
func Predictions(ctx context.Context, ledger core.Ledger) PredictionReport {
	out := PredictionReport{Meta: newMeta(time.Now())}
	errs := newSectionErrors()
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		byCat, err := forecast.ByCategory(ctx, ledger, forecast.DefaultCategoryHorizon)
		if err != nil {
			errs.add("por_categoria", err)
			return nil
		}
		mu.Lock()
		out.ByCategory = byCat
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		monthly, err := forecast.Aggregate(ledger, forecast.DefaultAggregateHorizon)
		if err != nil {
			errs.add("mensual", err)
			return nil
		}
		mu.Lock()
		out.Monthly = &monthly
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		res := anomaly.Detect(ledger, 0)
		mu.Lock()
		out.Anomalies = &res
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		cmp, err := forecast.Compare(ledger)
		if err != nil {
			errs.add("comparacion_modelos", err)
			return nil
		}
		mu.Lock()
		out.Models = &cmp
		mu.Unlock()
		return nil
	})
	g.Wait() //nolint:errcheck // sections record their own failures

	out.Errors = errs.result()
	return out
}

// StatisticalReport bundles the descriptive views of the ledger.
type StatisticalReport struct {
	Meta
	Correlations *profile.CorrelationResult `json:"correlaciones,omitempty"`
	Seasonality  *profile.SeasonalityResult `json:"estacionalidad,omitempty"`
	Temporal     *profile.TemporalResult    `json:"comparacion_temporal,omitempty"`
	Clusters     *profile.ClusterResult     `json:"clusters,omitempty"`
	Trend        *profile.TrendResult       `json:"tendencias,omitempty"`
	Outliers     *profile.OutlierResult     `json:"outliers,omitempty"`
	Errors       map[string]string          `json:"errores,omitempty"`
}

// Statistics runs the profiling sections concurrently over one ledger.
func Statistics(ctx context.Context, ledger core.Ledger) StatisticalReport {
	out := StatisticalReport{Meta: newMeta(time.Now())}
	errs := newSectionErrors()
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		res := profile.Correlations(ledger)
		mu.Lock()
		out.Correlations = &res
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		res := profile.Seasonality(ledger)
		mu.Lock()
		out.Seasonality = &res
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		res, err := profile.TemporalComparison(ledger)
		if err != nil {
			errs.add("comparacion_temporal", err)
			return nil
		}
		mu.Lock()
		out.Temporal = &res
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		res, err := profile.Clusters(ledger, 0)
		if err != nil {
			errs.add("clusters", err)
			return nil
		}
		mu.Lock()
		out.Clusters = &res
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		res, err := profile.Trend(ledger)
		if err != nil {
			errs.add("tendencias", err)
			return nil
		}
		mu.Lock()
		out.Trend = &res
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		res, err := profile.Outliers(ledger)
		if err != nil {
			errs.add("outliers", err)
			return nil
		}
		mu.Lock()
		out.Outliers = &res
		mu.Unlock()
		return nil
	})
	g.Wait() //nolint:errcheck // sections record their own failures

	out.Errors = errs.result()
	return out
}

// SavingsReport bundles the guidance views of the ledger.
type SavingsReport struct {
	Meta
	Plan   *advisor.SavingsPlan `json:"plan_ahorro,omitempty"`
	Tips   []advisor.Tip        `json:"consejos"`
	Alerts advisor.AlertReport  `json:"alertas_presupuesto"`
	Health advisor.HealthScore  `json:"salud_financiera"`
	Errors map[string]string    `json:"errores,omitempty"`
}

// SavingsOptions parameterizes the savings report. A zero Target skips
// the savings plan section.
type SavingsOptions struct {
	Target      float64
	TargetMonth int
	Budget      advisor.Budget
}

// Savings runs the advisory sections concurrently over one ledger.
func Savings(ctx context.Context, ledger core.Ledger, opts SavingsOptions) SavingsReport {
	out := SavingsReport{Meta: newMeta(time.Now())}
	errs := newSectionErrors()
	var mu sync.Mutex

	anomalies := anomaly.Detect(ledger, 0)

	g, _ := errgroup.WithContext(ctx)
	if opts.Target > 0 {
		g.Go(func() error {
			plan, err := advisor.SavingsGoal(ledger, opts.Target, opts.TargetMonth)
			if err != nil {
				errs.add("plan_ahorro", err)
				return nil
			}
			mu.Lock()
			out.Plan = &plan
			mu.Unlock()
			return nil
		})
	}
	g.Go(func() error {
		tips := advisor.Tips(ledger)
		mu.Lock()
		out.Tips = tips
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		alerts := advisor.BudgetAlerts(ledger, opts.Budget)
		mu.Lock()
		out.Alerts = alerts
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		health := advisor.Health(ledger, opts.Budget.Total, anomalies.Count)
		mu.Lock()
		out.Health = health
		mu.Unlock()
		return nil
	})
	g.Wait() //nolint:errcheck // sections record their own failures

	out.Errors = errs.result()
	return out
}
