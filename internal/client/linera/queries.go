package linera

import (
	"context"
	"encoding/json"
	"fmt"
)

const allPredictionRoundsQuery = `query { allRounds { id status resolutionPrice resolvedAt closedAt createdAt closingPrice upBets downBets result prizePool upBetsPool downBetsPool } }`

const allLotteryRoundsQuery = `query { allRounds { id ticketPrice totalTicketsSold status closedAt createdAt prizePool } }`

// AllPredictionRounds fetches the full round set for one prediction
// application. Degrades to an empty slice on any failure (logged by Query);
// the bound is the chain-side round retention, so no pagination cursor.
func (c *Client) AllPredictionRounds(ctx context.Context, endpoint string) []PredictionRound {
	data := c.Query(ctx, endpoint, allPredictionRoundsQuery)
	var payload struct {
		AllRounds []PredictionRound `json:"allRounds"`
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &payload)
	}
	return payload.AllRounds
}

func (c *Client) AllLotteryRounds(ctx context.Context, endpoint string) []LotteryRound {
	data := c.Query(ctx, endpoint, allLotteryRoundsQuery)
	var payload struct {
		AllRounds []LotteryRound `json:"allRounds"`
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &payload)
	}
	return payload.AllRounds
}

func (c *Client) RoundWinners(ctx context.Context, endpoint string, roundID int64) []RoundWinner {
	query := fmt.Sprintf(`query { roundWinners(roundId: %d) { ticketNumber sourceChainId prizeAmount } }`, roundID)
	data := c.Query(ctx, endpoint, query)
	var payload struct {
		RoundWinners []RoundWinner `json:"roundWinners"`
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &payload)
	}
	return payload.RoundWinners
}

// Mutations return errors: the lifecycle orchestrator decides whether a
// failed state advance is retried this cycle or the next.

func (c *Client) CloseRound(ctx context.Context, endpoint, closingPrice string) error {
	_, err := c.Execute(ctx, endpoint, fmt.Sprintf(`mutation { closeRound(closingPrice: %q) }`, closingPrice))
	return err
}

func (c *Client) ResolveRound(ctx context.Context, endpoint string) error {
	_, err := c.Execute(ctx, endpoint, `mutation { resolveRound }`)
	return err
}

func (c *Client) CreateRound(ctx context.Context, endpoint string) error {
	_, err := c.Execute(ctx, endpoint, `mutation { createRound }`)
	return err
}

func (c *Client) CloseLotteryRound(ctx context.Context, endpoint string) error {
	_, err := c.Execute(ctx, endpoint, `mutation { closeLotteryRound }`)
	return err
}

func (c *Client) GenerateWinner(ctx context.Context, endpoint string, roundID int64) error {
	_, err := c.Execute(ctx, endpoint, fmt.Sprintf(`mutation { generateWinner(roundId: %d) }`, roundID))
	return err
}

func (c *Client) SetMicrobetAppID(ctx context.Context, endpoint, appID string) error {
	_, err := c.Execute(ctx, endpoint, fmt.Sprintf(`mutation { setMicrobetAppId(microbetAppId: %q) }`, appID))
	return err
}

func (c *Client) SetLeaderboardChainID(ctx context.Context, endpoint, chainID string) error {
	_, err := c.Execute(ctx, endpoint, fmt.Sprintf(`mutation { setLeaderboardChainId(chainId: %q) }`, chainID))
	return err
}

func (c *Client) Mint(ctx context.Context, endpoint, owner, amount string) error {
	_, err := c.Execute(ctx, endpoint, fmt.Sprintf(`mutation { mint(owner: %q, amount: %q) }`, owner, amount))
	return err
}

func (c *Client) Withdraw(ctx context.Context, endpoint, owner string) error {
	_, err := c.Execute(ctx, endpoint, fmt.Sprintf(`mutation { withdraw(owner: %q) }`, owner))
	return err
}

// TransferPrediction places a bet by transferring into the prediction
// application's account; direction is "up" or "down".
func (c *Client) TransferPrediction(ctx context.Context, endpoint, owner, amount, targetChain, targetOwner, direction string) error {
	mutation := fmt.Sprintf(
		`mutation { transfer(owner: %q, amount: %q, targetAccount: { chainId: %q, owner: %q }, prediction: %q) }`,
		owner, amount, targetChain, targetOwner, direction,
	)
	_, err := c.Execute(ctx, endpoint, mutation)
	return err
}

// PurchaseTickets transfers into the lottery application's account with the
// ticket-purchase flag set.
func (c *Client) PurchaseTickets(ctx context.Context, endpoint, owner, amount, targetChain, targetOwner string) error {
	mutation := fmt.Sprintf(
		`mutation { transfer(owner: %q, amount: %q, targetAccount: { chainId: %q, owner: %q }, purchaseTickets: true) }`,
		owner, amount, targetChain, targetOwner,
	)
	_, err := c.Execute(ctx, endpoint, mutation)
	return err
}
