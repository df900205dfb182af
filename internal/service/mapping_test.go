package service

import (
	"encoding/json"
	"testing"
	"time"

	"roundsync/internal/client/linera"
	"roundsync/internal/models"
)

func TestMapLotteryRound(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	row := mapLotteryRound(linera.LotteryRound{
		ID:               5,
		Status:           "Closed",
		TicketPrice:      "5",
		TotalTicketsSold: 120,
		PrizePool:        "600",
		CreatedAt:        json.Number("1700000000"),
	}, now)

	if row.ID != 5 || row.Status != models.StatusClosed {
		t.Fatalf("id/status = %d/%s", row.ID, row.Status)
	}
	if row.TicketPrice != "5" || row.PrizePool != "600" || row.TotalTicketsSold != 120 {
		t.Fatalf("amounts = %s/%s/%d", row.TicketPrice, row.PrizePool, row.TotalTicketsSold)
	}
	if row.CreatedAt == nil || !row.CreatedAt.Equal(time.UnixMilli(1_700_000_000_000)) {
		t.Fatalf("created_at = %v", row.CreatedAt)
	}
	if row.ClosedAt != nil {
		t.Fatalf("closed_at = %v, want nil", row.ClosedAt)
	}
	if !row.LastSeenAt.Equal(now) {
		t.Fatalf("last_seen_at = %v", row.LastSeenAt)
	}
	if len(row.RawJSON) == 0 {
		t.Fatal("raw json empty")
	}
}

func TestMapPredictionRound(t *testing.T) {
	now := time.Now().UTC()
	result := "up"
	row := mapPredictionRound("btc", linera.PredictionRound{
		ID:           42,
		Status:       "resolved",
		ClosingPrice: "67000.5",
		PrizePool:    float64(12.5),
		UpBets:       3,
		DownBets:     1,
		Result:       &result,
		CreatedAt:    json.Number("1700000000000"),
	}, now)

	if row.Chain != "btc" || row.RoundID != 42 {
		t.Fatalf("key = %s/%d", row.Chain, row.RoundID)
	}
	if row.Status != models.StatusResolved {
		t.Fatalf("status = %s", row.Status)
	}
	if row.ClosingPrice == nil || row.ClosingPrice.String() != "67000.5" {
		t.Fatalf("closing price = %v", row.ClosingPrice)
	}
	if row.ResolutionPrice != nil {
		t.Fatalf("resolution price = %v, want nil", row.ResolutionPrice)
	}
	if row.PrizePool.String() != "12.5" {
		t.Fatalf("prize pool = %s", row.PrizePool)
	}
	if row.Result == nil || *row.Result != "UP" {
		t.Fatalf("result = %v", row.Result)
	}
	if row.CreatedAt == nil || !row.CreatedAt.Equal(time.UnixMilli(1_700_000_000_000)) {
		t.Fatalf("created_at = %v", row.CreatedAt)
	}
}

func TestMapWinnerDefaultsSource(t *testing.T) {
	w := mapWinner(7, linera.RoundWinner{TicketNumber: json.Number("33"), PrizeAmount: "10"}, time.Now())
	if w.SourceChainID != "unknown" {
		t.Fatalf("source = %q, want unknown", w.SourceChainID)
	}
	if w.TicketNumber != "33" || w.PrizeAmount != "10" || w.RoundID != 7 {
		t.Fatalf("winner = %+v", w)
	}
}

func TestDedupeWinnersLastWins(t *testing.T) {
	now := time.Now()
	items := []models.LotteryWinner{
		{RoundID: 1, TicketNumber: "7", SourceChainID: "a", PrizeAmount: "1", CreatedAt: now},
		{RoundID: 1, TicketNumber: "8", SourceChainID: "a", PrizeAmount: "2", CreatedAt: now},
		{RoundID: 1, TicketNumber: "7", SourceChainID: "a", PrizeAmount: "9", CreatedAt: now},
	}
	out := dedupeWinners(items)
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].TicketNumber != "7" || out[0].PrizeAmount != "9" {
		t.Fatalf("first = %+v, want last occurrence of ticket 7", out[0])
	}
}

func TestLatestActionableRound(t *testing.T) {
	rounds := []linera.LotteryRound{
		{ID: 3, Status: "COMPLETE"},
		{ID: 5, Status: "complete"},
		{ID: 4, Status: "CLOSED"},
		{ID: 6, Status: "ACTIVE"},
	}
	id, ok := latestActionableRound(rounds)
	if !ok || id != 4 {
		t.Fatalf("got %d/%v, want closed round 4", id, ok)
	}

	id, ok = latestActionableRound([]linera.LotteryRound{
		{ID: 3, Status: "COMPLETE"},
		{ID: 5, Status: "COMPLETE"},
	})
	if !ok || id != 5 {
		t.Fatalf("got %d/%v, want complete round 5", id, ok)
	}

	if _, ok := latestActionableRound([]linera.LotteryRound{{ID: 1, Status: "ACTIVE"}}); ok {
		t.Fatal("active-only set should have no actionable round")
	}
}

func TestAsAmountString(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{" 5.5 ", "5.5"},
		{json.Number("600"), "600"},
		{float64(12.5), "12.5"},
		{int64(9), "9"},
		{true, ""},
	}
	for _, c := range cases {
		if got := asAmountString(c.in); got != c.want {
			t.Errorf("asAmountString(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNewestFirst(t *testing.T) {
	got := newestFirst([]int64{3, 9, 1, 7})
	want := []int64{9, 7, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
