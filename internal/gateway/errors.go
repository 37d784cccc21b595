package gateway

import "fmt"

// Error is a gateway-reported failure: the HTTP exchange worked but the
// envelope carried success=false or a failed task status.
type Error struct {
	CallName string
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %s", e.CallName, e.Message)
}

// ProtocolError is a response the client could not make sense of: no task
// id in any known location, an unparseable inner result, or an envelope
// with an unknown shape.
type ProtocolError struct {
	CallName string
	Reason   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("gateway %s: protocol error: %s", e.CallName, e.Reason)
}
