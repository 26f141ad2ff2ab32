package domain

// Event is an externally observable record emitted by a handler or a saga
// continuation. Attribute order is preserved.
type Event struct {
	Type       string      `json:"type"`
	Attributes []Attribute `json:"attributes,omitempty"`
}

// Attribute is a single event key/value pair.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewEvent builds an event from alternating key/value pairs.
func NewEvent(eventType string, kv ...string) Event {
	e := Event{Type: eventType}
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attributes = append(e.Attributes, Attribute{Key: kv[i], Value: kv[i+1]})
	}
	return e
}

// Attr returns the value of the first attribute with the given key.
func (e Event) Attr(key string) string {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

// EventRecord is a persisted emitted event.
// Corresponds to the bridge_events table in ClickHouse.
type EventRecord struct {
	Timestamp  int64       // Unix timestamp in milliseconds
	Type       string      // event type
	Attributes []Attribute // ordered attributes
	Seq        *uint64     // outbound sequence for ticket events, nil otherwise
}

// Event types emitted by the engine.
const (
	EventInitialized             = "Initialized"
	EventTokenMinted             = "TokenMinted"
	EventTokenBurned             = "TokenBurned"
	EventRedeemRequested         = "RedeemRequested"
	EventRedeemFailed            = "RedeemFailed"
	EventGenerateTicketRequested = "GenerateTicketRequested"
	EventGenerateTicketFailed    = "GenerateTicketFailed"
	EventSwapToTargetFailed      = "SwapToTargetFailed"
	EventSagaStepFailed          = "SagaStepFailed"
	EventSwapToSourceFailed      = "SwapToSourceFailed"
	EventDirectiveExecuted       = "DirectiveExecuted"
	EventRouteUpdated            = "RouteUpdated"
	EventRefunded                = "Refunded"
	EventMigrated                = "Migrated"
)
