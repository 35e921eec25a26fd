package sync

import "github.com/google/uuid"

// CreateItem is one planned create operation against the inventory
// extension. CorrelationKey is a client-generated token threaded through the
// batch request so the response can be joined back without relying on the
// display name; extensions that do not echo it fall back to name
// correlation.
type CreateItem struct {
	ProductID      uuid.UUID `json:"-"`
	CorrelationKey string    `json:"correlation_key"`
	Name           string    `json:"name"`
	SKU            string    `json:"sku"`
	Quantity       int64     `json:"quantity"`
}

// UpdateItem is one planned stock update for an existing extension entry.
type UpdateItem struct {
	ProductID   uuid.UUID `json:"-"`
	ExtensionID string    `json:"id"`
	Quantity    int64     `json:"quantity"`
}

// BatchPlan is the ephemeral outcome of one planning pass: the ordered
// create and update lists after the batch-size cap was applied. It is
// constructed fresh every pass and discarded after submission.
type BatchPlan struct {
	Creates []CreateItem
	Updates []UpdateItem
	// Deferred counts candidates pushed past the batch cap into the next
	// planning pass. They are not errors.
	Deferred int
}

// IsEmpty reports whether the plan contains no work.
func (p *BatchPlan) IsEmpty() bool {
	return len(p.Creates) == 0 && len(p.Updates) == 0
}

// Size returns the number of queued operations.
func (p *BatchPlan) Size() int {
	return len(p.Creates) + len(p.Updates)
}

// BatchRequest is the payload shape the inventory extension accepts.
type BatchRequest struct {
	Create []CreateItem `json:"create"`
	Update []UpdateItem `json:"update"`
}

// CreateResult is the extension's per-item answer to a create request.
type CreateResult struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	CorrelationKey string `json:"correlation_key,omitempty"`
	Error          string `json:"error,omitempty"`
}

// UpdateResult is the extension's per-item answer to an update request.
type UpdateResult struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

// BatchResponse is the extension's answer to a submitted batch.
type BatchResponse struct {
	Create []CreateResult `json:"create"`
	Update []UpdateResult `json:"update"`
}
