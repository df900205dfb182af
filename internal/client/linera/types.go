package linera

// Wire shapes as the chain reports them. Timestamps and amounts are left
// loosely typed: encodings vary across chain application versions (numbers,
// decimal strings, ISO strings) and normalization happens in the mapper.

type PredictionRound struct {
	ID              int64   `json:"id"`
	Status          string  `json:"status"`
	ClosingPrice    any     `json:"closingPrice"`
	ResolutionPrice any     `json:"resolutionPrice"`
	Result          *string `json:"result"`
	UpBets          int64   `json:"upBets"`
	DownBets        int64   `json:"downBets"`
	PrizePool       any     `json:"prizePool"`
	UpBetsPool      any     `json:"upBetsPool"`
	DownBetsPool    any     `json:"downBetsPool"`
	CreatedAt       any     `json:"createdAt"`
	ClosedAt        any     `json:"closedAt"`
	ResolvedAt      any     `json:"resolvedAt"`
}

type LotteryRound struct {
	ID               int64  `json:"id"`
	Status           string `json:"status"`
	TicketPrice      any    `json:"ticketPrice"`
	TotalTicketsSold int64  `json:"totalTicketsSold"`
	PrizePool        any    `json:"prizePool"`
	CreatedAt        any    `json:"createdAt"`
	ClosedAt         any    `json:"closedAt"`
}

type RoundWinner struct {
	TicketNumber  any    `json:"ticketNumber"`
	SourceChainID string `json:"sourceChainId"`
	PrizeAmount   any    `json:"prizeAmount"`
}
