package approval

import "errors"

// Error kinds surfaced by the engine. Match them with errors.Is; the wrapping
// error carries the human readable detail.
var (
	ErrInvalidState          = errors.New("invalid state")
	ErrMissingRoute          = errors.New("missing route")
	ErrRouteNotFound         = errors.New("route not found")
	ErrEmptyRoute            = errors.New("empty route")
	ErrInvalidRoute          = errors.New("invalid route")
	ErrNoActiveInstance      = errors.New("no active approval instance")
	ErrNotAuthorizedApprover = errors.New("not authorized approver")
	ErrInvalidDecision       = errors.New("invalid decision")
	ErrDocumentNotFound      = errors.New("document not found")
	ErrConcurrentUpdate      = errors.New("concurrent update")
	ErrInvalidInput          = errors.New("invalid input")
)
