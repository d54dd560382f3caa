package domain

import "fmt"

// TargetType identifies which kind of entity a payment is for.
type TargetType string

const (
	TargetOrder        TargetType = "order"
	TargetParcelOrder  TargetType = "parcel_order"
	TargetSubscription TargetType = "subscription"
)

// Valid reports whether the target type is one of the known kinds.
func (t TargetType) Valid() bool {
	switch t {
	case TargetOrder, TargetParcelOrder, TargetSubscription:
		return true
	}
	return false
}

// Target references the entity a transaction pays for. Exactly one target
// per transaction.
type Target struct {
	Type TargetType `json:"type"`
	ID   string     `json:"id"`
}

// Key returns the "type:id" form used for lookups and log fields.
func (t Target) Key() string {
	return fmt.Sprintf("%s:%s", t.Type, t.ID)
}

// CarriesPayableFee reports whether a fiscal receipt is owed for this target
// kind when it is paid. Subscription top-ups move wallet balance only and do
// not produce a receipt.
func (t Target) CarriesPayableFee() bool {
	return t.Type == TargetOrder || t.Type == TargetParcelOrder
}
