package deck

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/shiikun-cn/tarot-mcp/internal/logger"
)

// Card is a single tarot card. Cards are built once at load time and never
// mutated afterwards.
type Card struct {
	Index        int
	Name         string
	ChineseName  string
	JapaneseName string
	Upright      string
	Reversed     string
}

// Deck is the full set of loaded cards, keyed by index. It is read-only
// after construction and safe for concurrent use.
type Deck struct {
	cards   map[int]Card
	indices []int
}

// New builds a deck from an already-assembled card set.
func New(cards map[int]Card) *Deck {
	indices := make([]int, 0, len(cards))
	for i := range cards {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return &Deck{cards: cards, indices: indices}
}

// Load reads card data from the first readable CSV path in the list.
// A deck with no cards is returned when none of the candidates is readable;
// the service still starts and draw requests fail until data is provided.
func Load(paths []string) *Deck {
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			continue
		}
		cards, err := parseCSV(f)
		_ = f.Close()
		if err != nil {
			logger.Warn("failed to parse card data", map[string]any{
				"path":  p,
				"error": err.Error(),
			})
			continue
		}
		logger.Info("loaded tarot data", map[string]any{
			"path":  p,
			"cards": len(cards),
		})
		return New(cards)
	}
	logger.Warn("no tarot csv found, starting without card data", map[string]any{
		"paths": paths,
	})
	return New(nil)
}

// parseCSV reads rows with columns Index, Card, Chinese Name, Japanese Name,
// Upright Meaning, Reversed Meaning. Rows whose Index does not parse are
// skipped. A later row with an already-seen index overwrites the earlier one.
func parseCSV(r io.Reader) (map[int]Card, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return map[int]Card{}, nil
	}
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[normalizeHeader(name)] = i
	}

	field := func(row []string, names ...string) string {
		for _, n := range names {
			if i, ok := col[n]; ok && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	cards := make(map[int]Card)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		idx, err := strconv.Atoi(field(row, "index"))
		if err != nil {
			continue
		}

		cards[idx] = Card{
			Index:        idx,
			Name:         field(row, "card"),
			ChineseName:  field(row, "chinese name", "chinesename"),
			JapaneseName: field(row, "japanese name", "japanesename"),
			Upright:      field(row, "upright meaning", "upright"),
			Reversed:     field(row, "reversed meaning", "reversed"),
		}
	}
	return cards, nil
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Get looks up a card by index.
func (d *Deck) Get(index int) (Card, bool) {
	c, ok := d.cards[index]
	return c, ok
}

// Indices returns all card indices in ascending order. The returned slice
// is a copy and may be modified by the caller.
func (d *Deck) Indices() []int {
	out := make([]int, len(d.indices))
	copy(out, d.indices)
	return out
}

func (d *Deck) Size() int {
	return len(d.cards)
}

func (d *Deck) Empty() bool {
	return len(d.cards) == 0
}
