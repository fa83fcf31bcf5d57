package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

var cst = time.FixedZone("CST", 8*3600)

func at(hour, min int) time.Time {
	return time.Date(2024, 3, 1, hour, min, 0, 0, cst)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestRates() *RateTable {
	return &RateTable{
		HallRate: dec("50"),
		PrivateRoomRates: map[string]decimal.Decimal{
			"大雅01": dec("80"),
			"小雅801": dec("60"),
		},
		ACRate:        dec("5"),
		HeaterRate:    dec("3"),
		OvernightRate: dec("10"),
		SessionLength: 4 * time.Hour,
	}
}

func openRoom(id string, kind RoomKind, now time.Time) *Room {
	r := NewRoom(id, kind)
	if err := r.Open(now); err != nil {
		panic(err)
	}
	return r
}
