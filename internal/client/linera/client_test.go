package linera

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func testClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return &Client{HTTP: srv.Client(), Logger: zap.NewNop()}, srv
}

func TestExecuteReturnsData(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s", r.Method)
		}
		w.Write([]byte(`{"data":{"allRounds":[{"id":1,"status":"ACTIVE"}]}}`))
	})
	defer srv.Close()

	data, err := c.Execute(context.Background(), srv.URL, `query { allRounds { id status } }`)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty data")
	}
}

func TestExecuteNon2xxIsAPIError(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	defer srv.Close()

	_, err := c.Execute(context.Background(), srv.URL, `query { allRounds { id } }`)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.Status != http.StatusBadGateway {
		t.Fatalf("status=%d", apiErr.Status)
	}
}

func TestExecuteKeepsPartialDataOnGraphQLErrors(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"allRounds":[{"id":2,"status":"CLOSED"}]},"errors":[{"message":"field unavailable"}]}`))
	})
	defer srv.Close()

	data, err := c.Execute(context.Background(), srv.URL, `query { allRounds { id status missing } }`)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(data) == 0 {
		t.Fatalf("partial data was dropped")
	}
}

func TestQueryDegradesToEmpty(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	})
	defer srv.Close()

	if data := c.Query(context.Background(), srv.URL, `query { allRounds { id } }`); len(data) != 0 {
		t.Fatalf("expected empty data, got %s", data)
	}
}

func TestAllLotteryRounds(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"allRounds":[
			{"id":5,"status":"CLOSED","ticketPrice":"5","totalTicketsSold":120,"prizePool":"600","createdAt":1700000000},
			{"id":6,"status":"ACTIVE","ticketPrice":"5","totalTicketsSold":3,"prizePool":"15","createdAt":"1700000300000"}
		]}}`))
	})
	defer srv.Close()

	rounds := c.AllLotteryRounds(context.Background(), srv.URL)
	if len(rounds) != 2 {
		t.Fatalf("len=%d", len(rounds))
	}
	if rounds[0].ID != 5 || rounds[0].Status != "CLOSED" || rounds[0].TotalTicketsSold != 120 {
		t.Fatalf("round mismatch: %+v", rounds[0])
	}
}

func TestAllLotteryRoundsUnreachableEndpoint(t *testing.T) {
	c := &Client{HTTP: &http.Client{}, Logger: zap.NewNop()}
	if rounds := c.AllLotteryRounds(context.Background(), "http://127.0.0.1:1/chains/x/applications/y"); len(rounds) != 0 {
		t.Fatalf("expected no rounds, got %d", len(rounds))
	}
}

func TestMutationsSendExpectedDocuments(t *testing.T) {
	var got []string
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		got = append(got, req.Query)
		w.Write([]byte(`{"data":{}}`))
	})
	defer srv.Close()

	ctx := context.Background()
	if err := c.CloseRound(ctx, srv.URL, "67000.5"); err != nil {
		t.Fatalf("closeRound: %v", err)
	}
	if err := c.GenerateWinner(ctx, srv.URL, 5); err != nil {
		t.Fatalf("generateWinner: %v", err)
	}
	if err := c.Mint(ctx, srv.URL, "owner-a", "100."); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := c.PurchaseTickets(ctx, srv.URL, "owner-a", "4.", "chain-b", "owner-b"); err != nil {
		t.Fatalf("purchaseTickets: %v", err)
	}
	if err := c.TransferPrediction(ctx, srv.URL, "owner-a", "2.", "chain-b", "owner-b", "up"); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if err := c.Withdraw(ctx, srv.URL, "owner-a"); err != nil {
		t.Fatalf("withdraw: %v", err)
	}

	want := []string{
		`mutation { closeRound(closingPrice: "67000.5") }`,
		`mutation { generateWinner(roundId: 5) }`,
		`mutation { mint(owner: "owner-a", amount: "100.") }`,
		`mutation { transfer(owner: "owner-a", amount: "4.", targetAccount: { chainId: "chain-b", owner: "owner-b" }, purchaseTickets: true) }`,
		`mutation { transfer(owner: "owner-a", amount: "2.", targetAccount: { chainId: "chain-b", owner: "owner-b" }, prediction: "up") }`,
		`mutation { withdraw(owner: "owner-a") }`,
	}
	if len(got) != len(want) {
		t.Fatalf("sent %d documents, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("document %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRoundWinners(t *testing.T) {
	c, srv := testClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"roundWinners":[{"ticketNumber":7,"sourceChainId":"abc","prizeAmount":"300"}]}}`))
	})
	defer srv.Close()

	winners := c.RoundWinners(context.Background(), srv.URL, 5)
	if len(winners) != 1 {
		t.Fatalf("len=%d", len(winners))
	}
	if winners[0].SourceChainID != "abc" {
		t.Fatalf("winner mismatch: %+v", winners[0])
	}
}
