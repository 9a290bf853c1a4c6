package main

import (
	"net/http"

	"github.com/farxc/despesas-dw/internal/response"
	"github.com/farxc/despesas-dw/internal/store"
)

type GetExpensesResponse = response.APIResponse[[]store.ExpenseRow]
type GetExpensesByModalityResponse = response.APIResponse[[]store.ModalityTotal]
type GetYearsResponse = response.APIResponse[[]int]

const (
	defaultExpensesLimit = 1000
	maxExpensesLimit     = 10000
)

func parseExpensesFilter(r *http.Request) (store.ExpensesFilter, error) {
	q := r.URL.Query()

	year, err := intParam(q, "year", 0)
	if err != nil {
		return store.ExpensesFilter{}, err
	}

	return store.ExpensesFilter{
		Year:           year,
		TopOrg:         q.Get("top_org"),
		SubordinateOrg: q.Get("sub_org"),
		ManagingUnit:   q.Get("unit"),
		Modality:       q.Get("modality"),
	}, nil
}

// @Summary		List expenses
// @Description	Fact rows joined with their dimension names. Name filters set to "Todos" or left empty match everything.
// @Tags			Expenses
// @Produce		json
// @Param			year		query		int					false	"Year"
// @Param			top_org		query		string				false	"Top organization name"
// @Param			sub_org		query		string				false	"Subordinate organization name"
// @Param			unit		query		string				false	"Managing unit name"
// @Param			modality	query		string				false	"Modality name"
// @Param			limit		query		int					false	"Maximum rows"	default(1000)
// @Success		200			{object}	GetExpensesResponse
// @Failure		400			{object}	response.ErrorResponse
// @Failure		500			{object}	response.ErrorResponse
// @Router			/expenses [get]
func (app *application) handleGetExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := parseExpensesFilter(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	filter.Limit, err = intParam(r.URL.Query(), "limit", defaultExpensesLimit)
	if err != nil || filter.Limit == 0 || filter.Limit > maxExpensesLimit {
		writeJSONError(w, http.StatusBadRequest, "invalid limit parameter")
		return
	}

	data, err := app.store.Expenses.GetExpenses(r.Context(), filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to query expenses: "+err.Error())
		return
	}

	response := &GetExpensesResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved expenses",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Expenses by modality
// @Description	Committed, liquidated and paid totals per spending modality.
// @Tags			Expenses
// @Produce		json
// @Param			year		query		int		false	"Year"
// @Param			top_org		query		string	false	"Top organization name"
// @Param			sub_org		query		string	false	"Subordinate organization name"
// @Param			unit		query		string	false	"Managing unit name"
// @Param			modality	query		string	false	"Modality name"
// @Success		200			{object}	GetExpensesByModalityResponse
// @Failure		400			{object}	response.ErrorResponse
// @Failure		500			{object}	response.ErrorResponse
// @Router			/expenses/by-modality [get]
func (app *application) handleGetExpensesByModality(w http.ResponseWriter, r *http.Request) {
	filter, err := parseExpensesFilter(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := app.store.Expenses.GetExpensesByModality(r.Context(), filter)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to query expenses by modality: "+err.Error())
		return
	}

	response := &GetExpensesByModalityResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved expenses by modality",
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}

// @Summary		Loaded years
// @Tags			Expenses
// @Produce		json
// @Success		200	{object}	GetYearsResponse
// @Failure		500	{object}	response.ErrorResponse
// @Router			/years [get]
func (app *application) handleGetYears(w http.ResponseWriter, r *http.Request) {
	data, err := app.store.Expenses.GetYears(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to query years: "+err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, &GetYearsResponse{Success: true, Data: data}); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
