package domain

import "time"

const (
	PolicyNoCancel         = "no_cancel"
	PolicyCancelWithNotice = "cancel_with_notice"
)

// DefaultNoticeWindow is how far before the service window a noticed
// cancellation must arrive when no per-order window is set.
const DefaultNoticeWindow = 7 * 24 * time.Hour

// CancellationPolicy is a closed variant: no_cancel, or cancel_with_notice
// carrying the notice window it was stored with.
type CancellationPolicy struct {
	Option       string
	NoticeWindow time.Duration
}

func DefaultCancellationPolicy() CancellationPolicy {
	return CancellationPolicy{Option: PolicyNoCancel}
}

func IsValidPolicyOption(option string) bool {
	return option == PolicyNoCancel || option == PolicyCancelWithNotice
}

// CanCancel decides a post-release cancellation request. Pure; callers must
// evaluate it against the current clock at the moment of the request.
func CanCancel(policy CancellationPolicy, startTime, now time.Time) bool {
	switch policy.Option {
	case PolicyCancelWithNotice:
		window := policy.NoticeWindow
		if window <= 0 {
			window = DefaultNoticeWindow
		}
		return !now.After(startTime.Add(-window))
	default:
		// Unset and unknown options behave as no_cancel.
		return false
	}
}
