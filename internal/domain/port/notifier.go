package port

import "context"

type FailureNotifier interface {
	NotifyFailure(ctx context.Context, userEmail string, analysisID string, clipKey string, errorMsg string) error
}
