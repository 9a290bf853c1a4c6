package main

import (
	"net/http"

	"github.com/farxc/despesas-dw/internal/response"
	"github.com/farxc/despesas-dw/internal/store"
)

type GetRunHistoryResponse = response.APIResponse[[]store.RunOutcome]

// @Summary		Get run history
// @Description	Latest stage outcomes recorded by ETL runs, newest first.
// @Tags			Runs
// @Produce		json
// @Param			limit	query		int						false	"Limit the number of results"	default(20)
// @Success		200		{object}	GetRunHistoryResponse
// @Failure		500		{object}	response.ErrorResponse
// @Router			/runs [get]
func (app *application) handleGetRunHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query(), "limit", 20)
	if err != nil || limit == 0 {
		limit = 20
	}

	data, err := app.store.RunHistory.GetLatest(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to get run history: "+err.Error())
		return
	}

	response := &GetRunHistoryResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved latest run outcomes",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
