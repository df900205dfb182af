package service

import (
	"context"
	"testing"
	"time"

	"roundsync/internal/client/linera"
)

func TestLatestClosed(t *testing.T) {
	ts := graphQLServer(t, map[string]string{
		"allRounds": `{"data":{"allRounds":[
			{"id":3,"status":"COMPLETE"},
			{"id":5,"status":"CLOSED"},
			{"id":4,"status":"CLOSED"},
			{"id":6,"status":"ACTIVE"}
		]}}`,
	})
	defer ts.Close()

	o := &LotteryOrchestrator{Endpoint: ts.URL, Client: &linera.Client{}}
	id, ok := o.latestClosed(context.Background())
	if !ok || id != 5 {
		t.Fatalf("latestClosed = %d/%v, want 5", id, ok)
	}
}

func TestLatestClosedNone(t *testing.T) {
	ts := graphQLServer(t, map[string]string{
		"allRounds": `{"data":{"allRounds":[{"id":6,"status":"ACTIVE"}]}}`,
	})
	defer ts.Close()

	o := &LotteryOrchestrator{Endpoint: ts.URL, Client: &linera.Client{}}
	if _, ok := o.latestClosed(context.Background()); ok {
		t.Fatal("no closed round expected")
	}
}

func TestRoundComplete(t *testing.T) {
	ts := graphQLServer(t, map[string]string{
		"allRounds": `{"data":{"allRounds":[
			{"id":5,"status":"COMPLETE"},
			{"id":6,"status":"DRAWING"}
		]}}`,
	})
	defer ts.Close()

	o := &LotteryOrchestrator{Endpoint: ts.URL, Client: &linera.Client{}}
	if !o.roundComplete(context.Background(), 5) {
		t.Fatal("round 5 should be complete")
	}
	if o.roundComplete(context.Background(), 6) {
		t.Fatal("round 6 is still drawing")
	}
	if o.roundComplete(context.Background(), 99) {
		t.Fatal("unknown round must not be complete")
	}
}

func TestWaitForClosedRoundImmediate(t *testing.T) {
	ts := graphQLServer(t, map[string]string{
		"allRounds": `{"data":{"allRounds":[{"id":7,"status":"CLOSED"}]}}`,
	})
	defer ts.Close()

	o := &LotteryOrchestrator{
		Endpoint:    ts.URL,
		Client:      &linera.Client{},
		WaitTimeout: 5 * time.Second,
	}
	start := time.Now()
	id, ok := o.waitForClosedRound(context.Background())
	if !ok || id != 7 {
		t.Fatalf("got %d/%v, want 7", id, ok)
	}
	if time.Since(start) > time.Second {
		t.Fatal("immediate hit should not wait")
	}
}

func TestSleepCtxCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepCtx(ctx, time.Minute); err == nil {
		t.Fatal("want context error")
	}
}
