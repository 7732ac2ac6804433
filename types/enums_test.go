package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to SaleStatus }{
		{SalePending, SalePaid},
		{SalePending, SaleCancelled},
		{SalePaid, SaleExpired},
		{SalePending, SalePending},
		{SalePaid, SalePaid},
		{SaleCancelled, SaleCancelled},
		{SaleExpired, SaleExpired},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}

	denied := []struct{ from, to SaleStatus }{
		{SalePaid, SalePending},
		{SalePaid, SaleCancelled},
		{SaleCancelled, SalePaid},
		{SaleCancelled, SalePending},
		{SaleExpired, SalePaid},
		{SaleExpired, SalePending},
		{SalePending, SaleExpired},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
