package handlers

import (
	"net/http"
	"strconv"

	"github.com/agentstation/docsync/internal/server/response"
	"github.com/agentstation/docsync/pkg/logging"
	"github.com/agentstation/docsync/pkg/records"
)

// HandleFetchRaw handles GET {prefix}/fetch-raw?batch=N.
// Batches are served from the cache unless refresh=true is given, which
// drops the cached copy before fetching again.
func (h *Handlers) HandleFetchRaw(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		response.MethodNotAllowed(w, r.Method)
		return
	}

	log := logging.FromContext(r.Context())
	query := r.URL.Query()

	batch := query.Get("batch")
	if batch == "" {
		batch = h.app.DefaultBatch()
	}
	refresh, _ := strconv.ParseBool(query.Get("refresh"))

	if refresh {
		h.cache.Invalidate(batch)
	} else if b, ok := h.cache.Batch(batch); ok {
		log.Debug().Str("batch", batch).Msg("Serving raw batch from cache")
		response.OK(w, rawPayload(b), "")
		return
	}

	client, err := h.app.Client()
	if err != nil {
		log.Error().Err(err).Msg("Failed to create docsync client")
		response.InternalError(w, response.CodeFetchFailed, response.MessageGeneric)
		return
	}

	b, err := client.Fetch(r.Context(), batch)
	if err != nil {
		log.Error().Err(err).Str("batch", batch).Msg("Failed to fetch raw data from upstream API")
		response.InternalError(w, response.CodeFetchFailed, response.MessageGeneric)
		return
	}

	h.cache.PutBatch(batch, b)
	response.OK(w, rawPayload(b), "")
}

func rawPayload(b *records.Batch) map[string]any {
	recs := b.Records
	if recs == nil {
		recs = []records.RawRecord{}
	}
	return map[string]any{
		"batchId": b.BatchID,
		"records": recs,
	}
}
