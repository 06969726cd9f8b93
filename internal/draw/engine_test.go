package draw

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiikun-cn/tarot-mcp/internal/deck"
	"github.com/shiikun-cn/tarot-mcp/internal/usedset"
)

func testDeck(size int) *deck.Deck {
	cards := make(map[int]deck.Card, size)
	for i := 0; i < size; i++ {
		cards[i] = deck.Card{
			Index:    i,
			Name:     string(rune('A' + i)),
			Upright:  "up",
			Reversed: "down",
		}
	}
	return deck.New(cards)
}

func TestDrawEmptyDeckFails(t *testing.T) {
	engine := NewEngine(deck.New(nil), usedset.NewMemoryStore())

	_, err := engine.Draw(context.Background(), "s1", 1, false)
	assert.ErrorIs(t, err, ErrNoDeckLoaded)

	// resetIfExhausted does not rescue an empty deck
	_, err = engine.Draw(context.Background(), "s1", 1, true)
	assert.ErrorIs(t, err, ErrNoDeckLoaded)
}

func TestDrawNeverRepeatsWithinSession(t *testing.T) {
	const size = 22
	engine := NewEngine(testDeck(size), usedset.NewMemoryStore())
	ctx := context.Background()

	seen := make(map[int]bool)
	for i := 0; i < size; i++ {
		picks, err := engine.Draw(ctx, "s1", 1, false)
		require.NoError(t, err)
		require.Len(t, picks, 1)
		assert.False(t, seen[picks[0].Index], "index %d repeated", picks[0].Index)
		seen[picks[0].Index] = true
	}
	assert.Len(t, seen, size)
}

func TestDrawExhaustionWithReset(t *testing.T) {
	const size = 5
	engine := NewEngine(testDeck(size), usedset.NewMemoryStore())
	ctx := context.Background()

	for i := 0; i < size; i++ {
		_, err := engine.Draw(ctx, "s1", 1, false)
		require.NoError(t, err)
	}

	picks, err := engine.Draw(ctx, "s1", 1, true)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.GreaterOrEqual(t, picks[0].Index, 0)
	assert.Less(t, picks[0].Index, size)
}

func TestDrawExhaustionWithoutResetFailsAndRecordsNothing(t *testing.T) {
	const size = 5
	store := usedset.NewMemoryStore()
	engine := NewEngine(testDeck(size), store)
	ctx := context.Background()

	for i := 0; i < size; i++ {
		_, err := engine.Draw(ctx, "s1", 1, false)
		require.NoError(t, err)
	}

	_, err := engine.Draw(ctx, "s1", 1, false)
	assert.ErrorIs(t, err, ErrInsufficientCards)

	used, err := store.Used(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, used, size, "failed draw must not touch the used-set")
}

func TestDrawResetDiscardsPartialRemainder(t *testing.T) {
	// 2 of 3 cards used; asking for 2 with reset enabled clears the whole
	// session and draws from the full deck, so the leftover unused card
	// gets no special treatment.
	store := usedset.NewMemoryStore()
	engine := NewEngine(testDeck(3), store)
	ctx := context.Background()

	require.NoError(t, store.Add(ctx, "s1", 0))
	require.NoError(t, store.Add(ctx, "s1", 1))

	picks, err := engine.Draw(ctx, "s1", 2, true)
	require.NoError(t, err)
	require.Len(t, picks, 2)
	assert.NotEqual(t, picks[0].Index, picks[1].Index)

	used, err := store.Used(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, used, 2)
}

func TestDrawCountBeyondDeckSizeFailsEvenWithReset(t *testing.T) {
	store := usedset.NewMemoryStore()
	engine := NewEngine(testDeck(2), store)
	ctx := context.Background()

	_, err := engine.Draw(ctx, "s1", 3, true)
	assert.ErrorIs(t, err, ErrInsufficientCards)

	// the reset still happened; a fittable draw now succeeds from the
	// full deck
	picks, err := engine.Draw(ctx, "s1", 2, false)
	require.NoError(t, err)
	assert.Len(t, picks, 2)
}

func TestDrawNonPositiveCountReturnsNothing(t *testing.T) {
	engine := NewEngine(testDeck(3), usedset.NewMemoryStore())
	ctx := context.Background()

	for _, count := range []int{0, -1} {
		picks, err := engine.Draw(ctx, "s1", count, false)
		require.NoError(t, err)
		assert.Empty(t, picks)
	}
}

func TestDrawMultiCardIsPermutation(t *testing.T) {
	engine := NewEngine(testDeck(3), usedset.NewMemoryStore())
	ctx := context.Background()

	picks, err := engine.Draw(ctx, "s1", 3, true)
	require.NoError(t, err)
	require.Len(t, picks, 3)

	got := map[int]bool{}
	for _, p := range picks {
		got[p.Index] = true
	}
	assert.Equal(t, map[int]bool{0: true, 1: true, 2: true}, got)

	// deck exhausted now
	_, err = engine.Draw(ctx, "s1", 1, false)
	assert.ErrorIs(t, err, ErrInsufficientCards)

	// explicit reset makes the deck available again
	require.NoError(t, engine.Reset(ctx, "s1"))
	picks, err = engine.Draw(ctx, "s1", 1, false)
	require.NoError(t, err)
	require.Len(t, picks, 1)
	assert.Contains(t, []int{0, 1, 2}, picks[0].Index)
}

func TestDrawRecordsUsageInPickOrder(t *testing.T) {
	store := &recordingStore{Store: usedset.NewMemoryStore()}
	engine := NewEngine(testDeck(10), store)

	picks, err := engine.Draw(context.Background(), "s1", 4, false)
	require.NoError(t, err)

	var pickOrder []int
	for _, p := range picks {
		pickOrder = append(pickOrder, p.Index)
	}
	assert.Equal(t, pickOrder, store.added)
}

func TestDrawOrientationAndMeaningMatch(t *testing.T) {
	engine := NewEngine(testDeck(22), usedset.NewMemoryStore())

	picks, err := engine.Draw(context.Background(), "s1", 10, false)
	require.NoError(t, err)

	for _, p := range picks {
		switch p.Orientation {
		case OrientationUpright:
			assert.Equal(t, "up", p.Meaning)
		case OrientationReversed:
			assert.Equal(t, "down", p.Meaning)
		default:
			t.Fatalf("unexpected orientation %q", p.Orientation)
		}
	}
}

func TestResetUnknownSessionSucceeds(t *testing.T) {
	store := usedset.NewMemoryStore()
	engine := NewEngine(testDeck(3), store)
	ctx := context.Background()

	require.NoError(t, engine.Reset(ctx, "never-seen"))

	// reset after history leaves the same post-condition
	_, err := engine.Draw(ctx, "s2", 2, false)
	require.NoError(t, err)
	require.NoError(t, engine.Reset(ctx, "s2"))

	used, err := store.Used(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, used)
}

func TestDrawBackendErrorPassesThrough(t *testing.T) {
	backendErr := errors.New("connection refused")
	engine := NewEngine(testDeck(3), &failingStore{err: backendErr})

	_, err := engine.Draw(context.Background(), "s1", 1, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.NotErrorIs(t, err, ErrNoDeckLoaded)
	assert.NotErrorIs(t, err, ErrInsufficientCards)
}

func TestDrawUniformity(t *testing.T) {
	if testing.Short() {
		t.Skip("statistical test")
	}

	const size = 4
	const rounds = 8000
	engine := NewEngine(testDeck(size), usedset.NewMemoryStore())
	ctx := context.Background()

	counts := make([]int, size)
	for i := 0; i < rounds; i++ {
		require.NoError(t, engine.Reset(ctx, "s1"))
		picks, err := engine.Draw(ctx, "s1", 1, true)
		require.NoError(t, err)
		counts[picks[0].Index]++
	}

	// Each index is expected rounds/size times; allow a wide tolerance so
	// the test stays deterministic in practice.
	expected := rounds / size
	for idx, n := range counts {
		assert.InDelta(t, expected, n, float64(expected)/4, "index %d drawn %d times", idx, n)
	}
}

// recordingStore remembers the order of Add calls.
type recordingStore struct {
	usedset.Store
	added []int
}

func (r *recordingStore) Add(ctx context.Context, sessionID string, index int) error {
	r.added = append(r.added, index)
	return r.Store.Add(ctx, sessionID, index)
}

// failingStore errors on every operation.
type failingStore struct {
	err error
}

func (f *failingStore) Used(context.Context, string) (map[int]struct{}, error) {
	return nil, f.err
}

func (f *failingStore) Add(context.Context, string, int) error { return f.err }

func (f *failingStore) Clear(context.Context, string) error { return f.err }
