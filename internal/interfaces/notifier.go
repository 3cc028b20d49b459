package interfaces

import "context"

// Notifier delivers failure notifications. Fire-and-forget: implementations
// log their own delivery errors and never propagate them to the caller.
type Notifier interface {
	NotifyFailure(ctx context.Context, taskType, errorMessage, zipCode, source string)
}
