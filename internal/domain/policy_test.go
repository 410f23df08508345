package domain

import (
	"testing"
	"time"
)

func TestCanCancelNoCancelAlwaysDenies(t *testing.T) {
	start := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := CancellationPolicy{Option: PolicyNoCancel}
	if CanCancel(policy, start, start.Add(-365*24*time.Hour)) { t.Fatal("no_cancel allowed a cancellation") }
	if CanCancel(CancellationPolicy{}, start, start.Add(-365*24*time.Hour)) { t.Fatal("unset policy allowed a cancellation") }
	if CanCancel(CancellationPolicy{Option: "something_else"}, start, start.Add(-365*24*time.Hour)) { t.Fatal("unknown option allowed a cancellation") }
}

func TestCanCancelWithNoticeRespectsWindow(t *testing.T) {
	start := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := CancellationPolicy{Option: PolicyCancelWithNotice, NoticeWindow: 7 * 24 * time.Hour}
	if !CanCancel(policy, start, start.Add(-8*24*time.Hour)) { t.Fatal("cancellation before the window was denied") }
	if !CanCancel(policy, start, start.Add(-7*24*time.Hour)) { t.Fatal("cancellation exactly at the window boundary was denied") }
	if CanCancel(policy, start, start.Add(-6*24*time.Hour)) { t.Fatal("cancellation inside the window was allowed") }
	if CanCancel(policy, start, start.Add(time.Hour)) { t.Fatal("cancellation after start was allowed") }
}

func TestCanCancelWithNoticeDefaultsWindow(t *testing.T) {
	start := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := CancellationPolicy{Option: PolicyCancelWithNotice}
	if !CanCancel(policy, start, start.Add(-DefaultNoticeWindow)) { t.Fatal("default window boundary was denied") }
	if CanCancel(policy, start, start.Add(-DefaultNoticeWindow+time.Minute)) { t.Fatal("inside the default window was allowed") }
}

func TestIsValidPolicyOption(t *testing.T) {
	if !IsValidPolicyOption(PolicyNoCancel) || !IsValidPolicyOption(PolicyCancelWithNotice) { t.Fatal("known options rejected") }
	if IsValidPolicyOption("") || IsValidPolicyOption("free_cancel") { t.Fatal("unknown options accepted") }
}
