package rl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cartridge/sevens/internal/cards"
)

// WriteModel writes the Q-table as "<suit> <rank> <value>" lines, one per
// card, in deck order.
func (a *Agent) WriteModel(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range cards.NewDeck() {
		if _, err := fmt.Fprintf(bw, "%d %d %s\n", c.Suit, c.Rank,
			strconv.FormatFloat(a.q[c], 'g', -1, 64)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadModel merges records from r into the Q-table and returns how many
// were applied. Cards not present keep their current value. Reading stops
// at the first malformed line; everything before it is kept and the rest
// of the input is ignored. Blank lines are skipped.
func (a *Agent) ReadModel(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	n := 0
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		c, v, err := parseRecord(text)
		if err != nil {
			a.logger.Warn().Err(err).Int("line", line).Msg("ignoring rest of model input")
			return n, nil
		}
		a.q[c] = v
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read model: %w", err)
	}
	return n, nil
}

func parseRecord(text string) (cards.Card, float64, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return cards.Card{}, 0, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}
	suit, err := strconv.Atoi(fields[0])
	if err != nil {
		return cards.Card{}, 0, fmt.Errorf("suit: %w", err)
	}
	rank, err := strconv.Atoi(fields[1])
	if err != nil {
		return cards.Card{}, 0, fmt.Errorf("rank: %w", err)
	}
	v, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return cards.Card{}, 0, fmt.Errorf("value: %w", err)
	}
	if suit < 0 || suit >= cards.NumSuits || rank < cards.MinRank || rank > cards.MaxRank {
		return cards.Card{}, 0, fmt.Errorf("card %d/%d out of range", suit, rank)
	}
	return cards.Card{Suit: cards.Suit(suit), Rank: rank}, v, nil
}

// SaveModel writes the Q-table to filename, replacing it atomically.
func (a *Agent) SaveModel(filename string) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp*")
	if err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := a.WriteModel(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("save model: %w", err)
	}
	a.logger.Debug().Str("file", filename).Msg("model saved")
	return nil
}

// LoadModel merges the model stored in filename into the Q-table. A file
// that is missing or cannot be opened means there is no prior data: the
// table is left as is and no error is returned. A file that opens but
// fails to read part way through keeps the records read so far and is
// also not an error.
func (a *Agent) LoadModel(filename string) (int, error) {
	f, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.logger.Info().Str("file", filename).Msg("no model file, starting fresh")
		} else {
			a.logger.Warn().Err(err).Str("file", filename).Msg("model file unreadable, starting fresh")
		}
		return 0, nil
	}
	defer f.Close()

	n, err := a.ReadModel(f)
	if err != nil {
		a.logger.Warn().Err(err).Str("file", filename).Int("loaded", n).Msg("model file unreadable, keeping records read so far")
		return n, nil
	}
	a.logger.Debug().Str("file", filename).Int("loaded", n).Msg("model loaded")
	return n, nil
}
