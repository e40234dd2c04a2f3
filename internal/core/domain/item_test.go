package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItemIsSettlementEligible(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	lastDayEvening := time.Date(2024, 3, 31, 22, 15, 0, 0, time.UTC)
	before := time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC)
	settlementID := "s-1"

	cases := []struct {
		name string
		item Item
		want bool
	}{
		{"sold on last day", Item{Status: ItemSold, SaleDate: &lastDayEvening}, true},
		{"sold before period", Item{Status: ItemSold, SaleDate: &before}, false},
		{"not sold", Item{Status: ItemToSell}, false},
		{"already settled", Item{Status: ItemSold, SaleDate: &lastDayEvening, SettlementID: &settlementID}, false},
		{"sold without date", Item{Status: ItemSold}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.item.IsSettlementEligible(start, end))
		})
	}
}
