package domain

import "strings"

// gatewayStatusMap translates raw gateway order statuses (webhook payloads
// and poll responses share the same vocabulary) to canonical states.
var gatewayStatusMap = map[string]State{
	"COMPLETED":     StatePaid,
	"PAID":          StatePaid,
	"FAILED":        StateFailed,
	"DECLINED":      StateFailed,
	"CANCELLED":     StateCanceled,
	"CANCELED":      StateCanceled,
	"USERCANCELLED": StateCanceled,
	"EXPIRED":       StateCanceled,
	"PENDING":       StateProcessing,
}

// NormalizeStatus maps a raw reported status from the given channel to the
// canonical State. Unknown values map to PROCESSING: an unrecognized report
// means the gateway is still working, never a terminal outcome.
//
// Redirect reports are the user's browser relaying a UX hint; they are never
// trusted to decide a terminal state, so every redirect status normalizes to
// PROCESSING and the authoritative answer is fetched by a follow-up poll.
func NormalizeStatus(source Source, raw string) State {
	if source == SourceRedirect {
		return StateProcessing
	}
	if s, ok := gatewayStatusMap[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StateProcessing
}
