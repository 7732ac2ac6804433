package payments

import (
	"strings"

	"github.com/blackinbot/backend/types"
)

// MapStatus normalizes a gateway payment status into a sale status. Unknown
// values count as pending so a new gateway state never flips access.
func MapStatus(raw string) types.SaleStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paid", "approved", "completed":
		return types.SalePaid
	case "cancelled", "canceled", "failed":
		return types.SaleCancelled
	case "pending", "processing":
		return types.SalePending
	default:
		return types.SalePending
	}
}
