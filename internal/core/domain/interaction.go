package domain

import "time"

type InteractionStatus string

const (
	InteractionPending   InteractionStatus = "pending"
	InteractionDelivered InteractionStatus = "delivered"
	// InteractionFailed means the engine call did not succeed.
	InteractionFailed InteractionStatus = "failed"
	// InteractionRejected means the stored interaction failed validation.
	InteractionRejected InteractionStatus = "rejected"
)

// Interaction is one signal submitted through the gateway and journaled
// until the worker has forwarded it to the engine.
type Interaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Item      string            `json:"item"`
	Value     int               `json:"value"`
	Status    InteractionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// InteractionEvent announces a journaled interaction to the delivery worker.
type InteractionEvent struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RecommendOptions are the optional modifiers shared by recommendation calls.
// Zero values leave the corresponding query key out.
type RecommendOptions struct {
	HowMany      int
	Dither       bool
	Fresh        bool
	ProfileBased bool
	Radius       float64
}

// Location is a latitude/longitude pair in the textual form sent to the engine.
type Location struct {
	Latitude  string `json:"lat"`
	Longitude string `json:"lon"`
}
