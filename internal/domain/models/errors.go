package models

import "fmt"

var (
	ErrTransportDelivery   = fmt.Errorf("transport delivery failed")
	ErrResponderFailure    = fmt.Errorf("responder failure")
	ErrResponderIncomplete = fmt.Errorf("%w: responder requires an unsupported intermediate action", ErrResponderFailure)
	ErrAuthorizationDenied = fmt.Errorf("authorization denied")
)
