package docsync

import (
	"sync"

	"github.com/agentstation/docsync/pkg/dedup"
	"github.com/agentstation/docsync/pkg/records"
	"github.com/agentstation/docsync/pkg/upstream"
)

// Hook function types for pipeline events
type (
	// RecordSkippedHook is called when deduplication drops a record
	RecordSkippedHook func(index int, rec records.CanonicalRecord, reason dedup.SkipReason)

	// BatchSubmittedHook is called after the upstream accepts a batch
	BatchSubmittedHook func(batchID records.BatchID, count int, resp upstream.SubmitResponse)
)

// hooks manages event callbacks for pipeline events
type hooks struct {
	mu               sync.RWMutex
	onRecordSkipped  []RecordSkippedHook
	onBatchSubmitted []BatchSubmittedHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnRecordSkipped registers a callback for dropped records
func (h *hooks) OnRecordSkipped(fn RecordSkippedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRecordSkipped = append(h.onRecordSkipped, fn)
}

// OnBatchSubmitted registers a callback for submitted batches
func (h *hooks) OnBatchSubmitted(fn BatchSubmittedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onBatchSubmitted = append(h.onBatchSubmitted, fn)
}

func (h *hooks) triggerRecordSkipped(index int, rec records.CanonicalRecord, reason dedup.SkipReason) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onRecordSkipped {
		fn(index, rec, reason)
	}
}

func (h *hooks) triggerBatchSubmitted(batchID records.BatchID, count int, resp upstream.SubmitResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onBatchSubmitted {
		fn(batchID, count, resp)
	}
}
