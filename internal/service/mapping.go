package service

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"roundsync/internal/chaintime"
	"roundsync/internal/client/linera"
	"roundsync/internal/models"
)

// Chain-side numeric fields arrive as numbers, decimal strings or nothing
// depending on the application version. The coercers below pin each column
// to one stable representation so the row store never sees a field flip
// types between runs.

func asAmountString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

func asDecimal(v any) decimal.Decimal {
	d, _ := asDecimalOK(v)
	return d
}

func asDecimalPtr(v any) *decimal.Decimal {
	d, ok := asDecimalOK(v)
	if !ok {
		return nil
	}
	return &d
}

func asDecimalOK(v any) (decimal.Decimal, bool) {
	s := asAmountString(v)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func normalizeStatus(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func mapPredictionRound(chain string, r linera.PredictionRound, now time.Time) models.Round {
	raw, _ := json.Marshal(r)
	var result *string
	if r.Result != nil {
		v := strings.ToUpper(strings.TrimSpace(*r.Result))
		result = &v
	}
	return models.Round{
		Chain:           chain,
		RoundID:         r.ID,
		Status:          normalizeStatus(r.Status),
		ClosingPrice:    asDecimalPtr(r.ClosingPrice),
		ResolutionPrice: asDecimalPtr(r.ResolutionPrice),
		Result:          result,
		UpBets:          r.UpBets,
		DownBets:        r.DownBets,
		PrizePool:       asDecimal(r.PrizePool),
		UpBetsPool:      asDecimal(r.UpBetsPool),
		DownBetsPool:    asDecimal(r.DownBetsPool),
		CreatedAt:       chaintime.TimePtr(r.CreatedAt),
		ClosedAt:        chaintime.TimePtr(r.ClosedAt),
		ResolvedAt:      chaintime.TimePtr(r.ResolvedAt),
		LastSeenAt:      now,
		RawJSON:         raw,
	}
}

func mapLotteryRound(r linera.LotteryRound, now time.Time) models.LotteryRound {
	raw, _ := json.Marshal(r)
	return models.LotteryRound{
		ID:               r.ID,
		Status:           normalizeStatus(r.Status),
		TicketPrice:      asAmountString(r.TicketPrice),
		TotalTicketsSold: r.TotalTicketsSold,
		PrizePool:        asAmountString(r.PrizePool),
		CreatedAt:        chaintime.TimePtr(r.CreatedAt),
		ClosedAt:         chaintime.TimePtr(r.ClosedAt),
		LastSeenAt:       now,
		RawJSON:          raw,
	}
}

func mapWinner(roundID int64, w linera.RoundWinner, now time.Time) models.LotteryWinner {
	source := strings.TrimSpace(w.SourceChainID)
	if source == "" {
		source = "unknown"
	}
	return models.LotteryWinner{
		RoundID:       roundID,
		TicketNumber:  asAmountString(w.TicketNumber),
		SourceChainID: source,
		PrizeAmount:   asAmountString(w.PrizeAmount),
		CreatedAt:     now,
	}
}

// dedupeWinners collapses duplicate composite keys within one fetch so a
// single run never writes the same row twice; the last occurrence wins.
func dedupeWinners(items []models.LotteryWinner) []models.LotteryWinner {
	type key struct {
		roundID int64
		ticket  string
		source  string
	}
	index := make(map[key]int, len(items))
	out := make([]models.LotteryWinner, 0, len(items))
	for _, w := range items {
		k := key{w.RoundID, w.TicketNumber, w.SourceChainID}
		if i, ok := index[k]; ok {
			out[i] = w
			continue
		}
		index[k] = len(out)
		out = append(out, w)
	}
	return out
}

// latestActionableRound picks the round whose winner list is most likely
// still changing: the newest CLOSED round, else the newest COMPLETE one.
func latestActionableRound(rounds []linera.LotteryRound) (int64, bool) {
	best := func(status string) (int64, bool) {
		var id int64
		found := false
		for _, r := range rounds {
			if normalizeStatus(r.Status) != status {
				continue
			}
			if !found || r.ID > id {
				id = r.ID
				found = true
			}
		}
		return id, found
	}
	if id, ok := best(models.StatusClosed); ok {
		return id, true
	}
	return best(models.StatusComplete)
}

// newestFirst returns the ids sorted descending; used to trim mirror tables
// to the retention window.
func newestFirst(ids []int64) []int64 {
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}
