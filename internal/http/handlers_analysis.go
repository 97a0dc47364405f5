package http

import (
	"net/http"

	"gastos/internal/anomaly"
	"gastos/internal/forecast"
	"gastos/internal/profile"
	"gastos/internal/report"
)

// handlePredictCategory forecasts the next days of spending per category.
func (s *Server) handlePredictCategory(w http.ResponseWriter, r *http.Request) {
	req, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	forecasts, err := forecast.ByCategory(r.Context(), ledger, req.Horizon)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, map[string]any{"por_categoria": forecasts})
}

// handlePredictMonthly projects total daily spending with confidence bands.
func (s *Server) handlePredictMonthly(w http.ResponseWriter, r *http.Request) {
	req, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	projection, err := forecast.Aggregate(ledger, req.Horizon)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, projection)
}

// handleDetectAnomalies flags expenses outside the usual pattern.
func (s *Server) handleDetectAnomalies(w http.ResponseWriter, r *http.Request) {
	req, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, anomaly.Detect(ledger, req.Threshold))
}

// handleCompareModels scores the forecasting strategies on held-out data.
func (s *Server) handleCompareModels(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	comparison, err := forecast.Compare(ledger)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, comparison)
}

// handleSeasonality breaks spending down by weekday.
func (s *Server) handleSeasonality(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, profile.Seasonality(ledger))
}

// handleAnalysisComplete assembles the full prediction report.
func (s *Server) handleAnalysisComplete(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, report.Predictions(r.Context(), ledger))
}

// handleCorrelations reports which categories move together day to day.
func (s *Server) handleCorrelations(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, profile.Correlations(ledger))
}

// handleTemporalComparison contrasts the two most recent months.
func (s *Server) handleTemporalComparison(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	result, err := profile.TemporalComparison(ledger)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, result)
}

// handleClustering groups expenses into spending tiers.
func (s *Server) handleClustering(w http.ResponseWriter, r *http.Request) {
	req, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	result, err := profile.Clusters(ledger, req.Groups)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, result)
}

// handleTrends fits the weekly spending trend.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	result, err := profile.Trend(ledger)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, result)
}

// handleOutliers lists the expenses outside the IQR and z-score fences.
func (s *Server) handleOutliers(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	result, err := profile.Outliers(ledger)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, result)
}

// handleStatComplete assembles the full statistical report.
func (s *Server) handleStatComplete(w http.ResponseWriter, r *http.Request) {
	_, ledger, err := decodeAnalysisRequest(r)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	OK(w, report.Statistics(r.Context(), ledger))
}
