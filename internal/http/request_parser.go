package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gastos/internal/advisor"
	"gastos/internal/core"
)

// maxBodyBytes caps the request body size to keep a single request from
// exhausting memory.
const maxBodyBytes = 4 << 20

// analysisRequest is the body every analysis endpoint accepts: the expense
// list plus the knobs individual endpoints care about.
type analysisRequest struct {
	Expenses  []core.RawRecord `json:"gastos"`
	Horizon   int              `json:"dias"`
	Threshold float64          `json:"umbral"`
	Groups    int              `json:"grupos"`
	Target    float64          `json:"objetivo"`
	Months    int              `json:"meses"`
	Budget    *advisor.Budget  `json:"presupuesto"`
}

// decodeAnalysisRequest parses the body and normalizes the expense list.
// A malformed body or an invalid record aborts with *core.ValidationError.
func decodeAnalysisRequest(r *http.Request) (analysisRequest, core.Ledger, error) {
	var req analysisRequest
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		return req, nil, &core.ValidationError{Field: "expenses", Reason: "malformed JSON body"}
	}
	ledger, err := core.Normalize(req.Expenses)
	if err != nil {
		return req, nil, err
	}
	return req, ledger, nil
}

// writeAnalysisError maps domain errors onto HTTP status codes: invalid
// input is the caller's fault, too little data is unprocessable, anything
// else is ours.
func writeAnalysisError(w http.ResponseWriter, err error) {
	var validation *core.ValidationError
	if errors.As(err, &validation) {
		BadRequestError(validation.Error()).Write(w)
		return
	}
	var insufficient *core.InsufficientDataError
	if errors.As(err, &insufficient) {
		UnprocessableEntityError(insufficient.Error()).Write(w)
		return
	}
	InternalServerError("internal error").Write(w)
}
