package main

import (
	"net/http"

	"github.com/farxc/despesas-dw/internal/response"
	"github.com/farxc/despesas-dw/internal/store"
	"github.com/farxc/despesas-dw/internal/transparency/types"
	"github.com/go-chi/chi/v5"
)

type GetDimensionResponse = response.APIResponse[[]store.DimensionMember]

// @Summary		List dimension members
// @Description	Code and name of every member of one code dimension.
// @Tags			Dimensions
// @Produce		json
// @Param			name	path		string	true	"orgao-superior, orgao-subordinado, unidade-gestora, modalidade or elemento"
// @Success		200		{object}	GetDimensionResponse
// @Failure		404		{object}	response.ErrorResponse
// @Failure		500		{object}	response.ErrorResponse
// @Router			/dimensions/{name} [get]
func (app *application) handleGetDimension(w http.ResponseWriter, r *http.Request) {
	d, ok := types.DimensionByName(chi.URLParam(r, "name"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "unknown dimension")
		return
	}

	data, err := app.store.Dimensions.ListMembers(r.Context(), d)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to query dimension: "+err.Error())
		return
	}

	response := &GetDimensionResponse{
		Success: true,
		Data:    data,
		Message: "Successfully retrieved " + d.Name,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to write response")
	}
}
