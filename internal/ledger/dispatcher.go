package ledger

import "context"

// Dispatcher submits operation requests to the host ledger.
type Dispatcher interface {
	// Submit hands one dispatch to the host. For FireAndForget dispatches an
	// error here is the only failure signal; for WithCallback dispatches the
	// outcome arrives later as a Callback.
	Submit(ctx context.Context, d Dispatch) error
}
