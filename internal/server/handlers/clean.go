package handlers

import (
	"net/http"

	"github.com/agentstation/docsync/internal/server/response"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/records"
)

type cleanRequest struct {
	BatchID records.BatchID     `json:"batchId"`
	Records []records.RawRecord `json:"records"`
}

// HandleFetchClean handles POST {prefix}/fetch-clean. It normalizes and
// deduplicates the posted (possibly edited) raw records.
func (h *Handlers) HandleFetchClean(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		response.MethodNotAllowed(w, r.Method)
		return
	}

	log := logging.FromContext(r.Context())

	var req cleanRequest
	if err := decodeBody(r, &req); err != nil {
		log.Error().Err(err).Msg("Malformed fetch-clean request body")
		response.BadRequest(w, response.CodeMissingBatch, "batch_id and records are required")
		return
	}
	if req.BatchID.IsZero() || len(req.Records) == 0 {
		log.Error().
			Str("batch_id", req.BatchID.String()).
			Int("records", len(req.Records)).
			Msg("Missing batch_id or records in request")
		response.BadRequest(w, response.CodeMissingBatch, "batch_id and records are required")
		return
	}

	client, err := h.app.Client()
	if err != nil {
		log.Error().Err(err).Msg("Failed to create docsync client")
		response.InternalError(w, response.CodeGeneric, response.MessageGeneric)
		return
	}

	result := client.Clean(req.Records)
	items := make([]map[string]any, len(result.Items))
	for i, item := range result.Items {
		items[i] = item.Map()
	}

	response.OK(w, map[string]any{
		"batchId":      req.BatchID,
		"cleanedItems": items,
	}, "")
}
