package domain

import "errors"

// Sentinel errors corresponding to the node's external error taxonomy.
// Components wrap these with fmt.Errorf("...: %w", ErrX) and callers use
// errors.Is to classify failures without depending on gRPC status codes.
var (
	// ErrTransport covers dial failures, RPC timeouts, and connection resets
	// talking to a peer.
	ErrTransport = errors.New("transport error")
	// ErrRouting covers lookups that exhaust their hop budget or otherwise
	// cannot make progress toward a target.
	ErrRouting = errors.New("routing error")
	// ErrOwnershipConflict covers a store/retrieve/remove landing on a node
	// that, per its own routing state, is not responsible for the key.
	ErrOwnershipConflict = errors.New("ownership conflict")
	// ErrLocalStore covers failures local to the storage layer.
	ErrLocalStore = errors.New("local store error")
	// ErrNotFound covers a key absent from the store it was looked up in.
	ErrNotFound = errors.New("not found")
)
