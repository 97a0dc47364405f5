package profile

import (
	"math"
	"sort"

	"gastos/internal/core"
	"gastos/internal/stats"
)

const (
	iqrFactor        = 1.5
	outlierZ         = 2.5
	maxOutliersShown = 20
)

type (
	// Outlier is one expense flagged as extreme.
	Outlier struct {
		Date     string  `json:"fecha"`
		Amount   float64 `json:"monto"`
		Category string  `json:"categoria"`
		Method   string  `json:"metodo"`
	}

	// OutlierStats is the distribution snapshot the thresholds came from.
	OutlierStats struct {
		Q1         float64 `json:"q1"`
		Q3         float64 `json:"q3"`
		IQR        float64 `json:"iqr"`
		LowerBound float64 `json:"limite_inferior"`
		UpperBound float64 `json:"limite_superior"`
		Mean       float64 `json:"promedio"`
		Std        float64 `json:"desviacion"`
	}

	// OutlierResult lists flagged expenses, largest first, capped at
	// maxOutliersShown.
	OutlierResult struct {
		Detected   int          `json:"outliers_detectados"`
		Percentage float64      `json:"porcentaje"`
		Outliers   []Outlier    `json:"outliers"`
		Stats      OutlierStats `json:"estadisticas"`
	}
)

// Outliers flags expenses outside the interquartile fences or beyond
// outlierZ standard deviations. A record caught by both methods is
// reported once, tagged IQR. Detected counts every flagged record even
// when the listing is capped. Fewer than four records is an
// InsufficientDataError since quartiles need them.
func Outliers(ledger core.Ledger) (OutlierResult, error) {
	if len(ledger) < 4 {
		return OutlierResult{}, &core.InsufficientDataError{Reason: "need at least 4 records for quartiles"}
	}

	amounts := ledger.Amounts()
	q1 := stats.Quantile(amounts, 0.25)
	q3 := stats.Quantile(amounts, 0.75)
	iqr := q3 - q1
	lower := q1 - iqrFactor*iqr
	upper := q3 + iqrFactor*iqr

	methodByIndex := make(map[int]string)
	for i, a := range amounts {
		if a < lower || a > upper {
			methodByIndex[i] = "IQR"
		}
	}
	for i, z := range stats.ZScores(amounts) {
		if math.Abs(z) > outlierZ {
			if _, ok := methodByIndex[i]; !ok {
				methodByIndex[i] = "Z-Score"
			}
		}
	}

	flagged := make([]Outlier, 0, len(methodByIndex))
	for i, method := range methodByIndex {
		r := ledger[i]
		flagged = append(flagged, Outlier{
			Date:     r.Date.Format("2006-01-02"),
			Amount:   core.Round2(r.Amount),
			Category: r.Category,
			Method:   method,
		})
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].Amount != flagged[j].Amount {
			return flagged[i].Amount > flagged[j].Amount
		}
		return flagged[i].Date < flagged[j].Date
	})

	detected := len(flagged)
	if len(flagged) > maxOutliersShown {
		flagged = flagged[:maxOutliersShown]
	}

	return OutlierResult{
		Detected:   detected,
		Percentage: core.Round2(float64(detected) / float64(len(ledger)) * 100),
		Outliers:   flagged,
		Stats: OutlierStats{
			Q1:         core.Round2(q1),
			Q3:         core.Round2(q3),
			IQR:        core.Round2(iqr),
			LowerBound: core.Round2(lower),
			UpperBound: core.Round2(upper),
			Mean:       core.Round2(stats.Mean(amounts)),
			Std:        core.Round2(stats.StdSample(amounts)),
		},
	}, nil
}
