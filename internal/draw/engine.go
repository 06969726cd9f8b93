package draw

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/shiikun-cn/tarot-mcp/internal/deck"
	"github.com/shiikun-cn/tarot-mcp/internal/usedset"
)

var (
	// ErrNoDeckLoaded means no card data is available at all. Retrying
	// does not help until data is provided and the service restarted.
	ErrNoDeckLoaded = errors.New("no tarot card data loaded")

	// ErrInsufficientCards means the session has fewer unused cards left
	// than requested and the caller did not allow a reset.
	ErrInsufficientCards = errors.New("not enough distinct cards remaining for session")
)

const (
	OrientationUpright  = "upright"
	OrientationReversed = "reversed"
)

// Pick is one drawn card. Positional roles (past/present/future) are not
// part of a pick; the caller attaches them after the draw.
type Pick struct {
	Index        int    `json:"index"`
	Card         string `json:"card"`
	ChineseName  string `json:"chinese_name"`
	JapaneseName string `json:"japanese_name"`
	Orientation  string `json:"orientation"`
	Meaning      string `json:"meaning"`
}

// Engine draws distinct cards per session, recording usage in the injected
// store so the same card is never dealt twice to a session between resets.
type Engine struct {
	deck *deck.Deck
	used usedset.Store
}

func NewEngine(d *deck.Deck, store usedset.Store) *Engine {
	return &Engine{deck: d, used: store}
}

// Draw returns count distinct cards not previously dealt to the session,
// in pick order.
//
// When fewer unused cards remain than requested: with resetIfExhausted the
// session's usage is cleared and the draw proceeds against the full deck
// (no partial carry-over of leftover unused cards); otherwise the draw
// fails with ErrInsufficientCards and records nothing. A count larger than
// the deck itself fails the same way even after a reset.
//
// Usage is recorded per pick, not batched, so a failure mid-draw leaves
// earlier picks recorded. Two concurrent draws for the same session against
// a shared external store can observe the same remaining set and deal
// overlapping cards; the read-modify-write sequence is deliberately not
// serialized per session.
func (e *Engine) Draw(ctx context.Context, sessionID string, count int, resetIfExhausted bool) ([]Pick, error) {
	if e.deck.Empty() {
		return nil, ErrNoDeckLoaded
	}

	used, err := e.used.Used(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("used-set backend: %w", err)
	}

	indices := e.deck.Indices()
	remaining := make([]int, 0, len(indices))
	for _, idx := range indices {
		if _, ok := used[idx]; !ok {
			remaining = append(remaining, idx)
		}
	}

	if len(remaining) < count {
		if !resetIfExhausted {
			return nil, ErrInsufficientCards
		}
		if err := e.used.Clear(ctx, sessionID); err != nil {
			return nil, fmt.Errorf("used-set backend: %w", err)
		}
		remaining = indices
		// A reset rebuilds the pool from the whole deck; a request for
		// more cards than the deck holds still cannot be satisfied.
		if len(remaining) < count {
			return nil, ErrInsufficientCards
		}
	}

	picks := make([]Pick, 0, count)
	for n := 0; n < count; n++ {
		j, err := randInt(len(remaining))
		if err != nil {
			return nil, fmt.Errorf("random source: %w", err)
		}
		idx := remaining[j]
		remaining = append(remaining[:j], remaining[j+1:]...)

		if err := e.used.Add(ctx, sessionID, idx); err != nil {
			return nil, fmt.Errorf("used-set backend: %w", err)
		}

		card, _ := e.deck.Get(idx)

		orientation := OrientationUpright
		meaning := card.Upright
		flip, err := randInt(2)
		if err != nil {
			return nil, fmt.Errorf("random source: %w", err)
		}
		if flip == 1 {
			orientation = OrientationReversed
			meaning = card.Reversed
		}

		picks = append(picks, Pick{
			Index:        idx,
			Card:         card.Name,
			ChineseName:  card.ChineseName,
			JapaneseName: card.JapaneseName,
			Orientation:  orientation,
			Meaning:      meaning,
		})
	}

	return picks, nil
}

// Reset forgets all usage for the session. Resetting an unknown session
// succeeds.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	if err := e.used.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("used-set backend: %w", err)
	}
	return nil
}

// randInt returns a uniform value in [0, n) from crypto/rand.
func randInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
