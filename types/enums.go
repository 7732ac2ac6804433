package types

type SaleStatus string

const (
	SalePending   SaleStatus = "pending"
	SalePaid      SaleStatus = "paid"
	SaleCancelled SaleStatus = "cancelled"
	SaleExpired   SaleStatus = "expired"
)

// CanTransition reports whether a sale may move from one status to another.
// Same-status updates are allowed so replayed payment events stay no-ops.
func CanTransition(from, to SaleStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case SalePending:
		return to == SalePaid || to == SaleCancelled
	case SalePaid:
		return to == SaleExpired
	default:
		return false
	}
}

type ChatKind string

const (
	ChatKindGroup   ChatKind = "group"
	ChatKindChannel ChatKind = "channel"
)

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// MinPlanPrice is the lowest price the payment processor accepts for a plan.
const MinPlanPrice = 4.90
