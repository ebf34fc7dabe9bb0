package handlers

import (
	"net/http"

	"github.com/agentstation/docsync/internal/server/response"
	"github.com/agentstation/docsync/pkg/casing"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/records"
)

type submitRequest struct {
	BatchID      records.BatchID  `json:"batchId"`
	CleanedItems []map[string]any `json:"cleanedItems"`
}

// HandleSubmitClean handles POST {prefix}/submit-clean. Item keys may be
// camelCase; they are converted to snake_case before validation.
func (h *Handlers) HandleSubmitClean(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, r.Method)
		return
	}

	log := logging.FromContext(r.Context())

	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		log.Error().Err(err).Msg("Malformed submit-clean request body")
		response.BadRequest(w, response.CodeMissingCleaned, "batch and cleaned_items are required")
		return
	}

	items := make([]map[string]any, len(req.CleanedItems))
	for i, item := range req.CleanedItems {
		items[i] = casing.MapToSnake(item)
	}

	if req.BatchID.IsZero() || len(items) == 0 {
		log.Error().
			Str("batch_id", req.BatchID.String()).
			Int("cleaned_items", len(items)).
			Msg("Missing batch_id or cleaned_items in request")
		response.BadRequest(w, response.CodeMissingCleaned, "batch and cleaned_items are required")
		return
	}

	if invalid := h.validator.Maps(items); len(invalid) > 0 {
		log.Error().
			Int("invalid", len(invalid)).
			Interface("invalid_records", invalid).
			Msg("Validation failed for cleaned records")
		response.Fail(w, http.StatusBadRequest, response.CodeInvalidRecords, "Some records are invalid",
			map[string]any{"invalid_records": invalid})
		return
	}

	recs := make([]records.CanonicalRecord, len(items))
	for i, item := range items {
		recs[i] = records.CanonicalFromMap(item)
	}

	client, err := h.app.Client()
	if err != nil {
		log.Error().Err(err).Msg("Failed to create docsync client")
		response.InternalError(w, response.CodeSubmitFailed, "Server is unavailable, please try again later")
		return
	}

	result, err := client.Submit(r.Context(), req.BatchID, recs)
	if err != nil {
		log.Error().Err(err).
			Str("batch_id", req.BatchID.String()).
			Int("cleaned_items", len(recs)).
			Msg("Failed to submit cleaned data")
		response.InternalError(w, response.CodeSubmitFailed, "Server is unavailable, please try again later")
		return
	}

	if result == nil {
		result = map[string]any{}
	}
	response.OK(w, result, "Submission successful")
}
