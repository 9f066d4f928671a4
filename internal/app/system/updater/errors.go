package updater

import (
	"errors"

	"github.com/dalemusser/groupsync/internal/app/system/groupattr"
)

var (
	// ErrFetchFailed marks a failed profile read.
	ErrFetchFailed = errors.New("fetch profile failed")
	// ErrSigningFailed marks a failed merge-and-sign of the group attribute.
	ErrSigningFailed = groupattr.ErrSigningFailed
	// ErrPublishFailed marks a failed profile write.
	ErrPublishFailed = errors.New("publish profile failed")
	// ErrEnqueueDropped marks a message dropped at admission because the
	// queue was full. It is logged, never returned to the producer.
	ErrEnqueueDropped = errors.New("update queue full, message dropped")
)

// result labels used by the processed counter.
func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrFetchFailed):
		return "fetch_failed"
	case errors.Is(err, ErrSigningFailed):
		return "signing_failed"
	case errors.Is(err, ErrPublishFailed):
		return "publish_failed"
	default:
		return "error"
	}
}
