package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"roundsync/internal/models"
)

type stubRepo struct {
	rounds        []models.Round
	lotteryRounds []models.LotteryRound
	winners       []models.LotteryWinner
	state         *models.SyncState

	lastChain string
	lastLimit int
}

func (s *stubRepo) UpsertRounds(context.Context, []models.Round) error { return nil }
func (s *stubRepo) UpsertRound(context.Context, *models.Round) error   { return nil }
func (s *stubRepo) DeleteRoundsBelow(context.Context, string, int64) (int64, error) {
	return 0, nil
}

func (s *stubRepo) ListRounds(_ context.Context, chain string, limit int) ([]models.Round, error) {
	s.lastChain = chain
	s.lastLimit = limit
	return s.rounds, nil
}

func (s *stubRepo) UpsertLotteryRounds(context.Context, []models.LotteryRound) error { return nil }
func (s *stubRepo) UpsertLotteryRound(context.Context, *models.LotteryRound) error   { return nil }
func (s *stubRepo) DeleteLotteryRoundsBelow(context.Context, int64) (int64, error)   { return 0, nil }

func (s *stubRepo) ListLotteryRounds(context.Context, int) ([]models.LotteryRound, error) {
	return s.lotteryRounds, nil
}

func (s *stubRepo) UpsertLotteryWinners(context.Context, []models.LotteryWinner) error { return nil }
func (s *stubRepo) UpsertLotteryWinner(context.Context, *models.LotteryWinner) error   { return nil }

func (s *stubRepo) ListLotteryWinners(context.Context, int64) ([]models.LotteryWinner, error) {
	return s.winners, nil
}

func (s *stubRepo) GetSyncState(context.Context, string) (*models.SyncState, error) {
	return s.state, nil
}

func (s *stubRepo) SaveSyncState(context.Context, *models.SyncState) error { return nil }

func newTestEngine(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := &RoundHandler{Repo: repo}
	h.Register(engine)
	return engine
}

func TestListRoundsRequiresChain(t *testing.T) {
	engine := newTestEngine(&stubRepo{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rounds", nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestListRounds(t *testing.T) {
	repo := &stubRepo{rounds: []models.Round{{Chain: "btc", RoundID: 7, Status: models.StatusActive}}}
	engine := newTestEngine(repo)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rounds?chain=btc&limit=5", nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if repo.lastChain != "btc" || repo.lastLimit != 5 {
		t.Fatalf("repo called with %s/%d", repo.lastChain, repo.lastLimit)
	}
	var resp struct {
		Code int            `json:"code"`
		Data []models.Round `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != 0 || len(resp.Data) != 1 || resp.Data[0].RoundID != 7 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestListWinnersRejectsBadID(t *testing.T) {
	engine := newTestEngine(&stubRepo{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/lottery/rounds/abc/winners", nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSyncStateNotFound(t *testing.T) {
	engine := newTestEngine(&stubRepo{})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/sync/state?scope=lottery", nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
