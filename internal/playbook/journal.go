// Package playbook is the trader's graded trade journal.
package playbook

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/planetprotrader/backend/internal/contracts"
	"github.com/planetprotrader/backend/internal/sample"
	"github.com/planetprotrader/backend/internal/state"
	"github.com/planetprotrader/backend/pkg/logger"
)

// ErrInvalidTrade is returned when a trade fails validation
var ErrInvalidTrade = errors.New("invalid playbook trade")

// Stats summarises the journaled trades
type Stats struct {
	TotalTrades      int     `json:"totalTrades"`
	Wins             int     `json:"wins"`
	Losses           int     `json:"losses"`
	WinRate          float64 `json:"winRate"` // wins / closed trades
	TotalPnL         float64 `json:"totalPnL"`
	AverageRMultiple float64 `json:"averageRMultiple"`
}

// Snapshot is what the journal publishes
type Snapshot struct {
	Trades  []contracts.PlaybookTrade `json:"trades"`
	Entries []contracts.JournalEntry  `json:"entries"`
	Stats   Stats                     `json:"stats"`
}

// Journal holds trades and free-form entries, newest first
type Journal struct {
	mu      sync.Mutex
	trades  []contracts.PlaybookTrade
	entries []contracts.JournalEntry
	gen     *sample.Generator

	view   *state.Value[Snapshot]
	logger *logger.Logger
}

// NewJournal creates a journal from existing records
func NewJournal(trades []contracts.PlaybookTrade, entries []contracts.JournalEntry, gen *sample.Generator, bus state.Bus, log *logger.Logger) *Journal {
	j := &Journal{
		trades:  append([]contracts.PlaybookTrade(nil), trades...),
		entries: append([]contracts.JournalEntry(nil), entries...),
		gen:     gen,
		logger:  log.WithComponent("playbook"),
	}
	sort.SliceStable(j.trades, func(a, b int) bool { return j.trades[a].Timestamp.After(j.trades[b].Timestamp) })
	sort.SliceStable(j.entries, func(a, b int) bool { return j.entries[a].Timestamp.After(j.entries[b].Timestamp) })
	j.view = state.NewValue(state.TopicPlaybook, j.snapshotLocked(), bus, log)
	return j
}

// View exposes the published journal
func (j *Journal) View() *state.Value[Snapshot] {
	return j.view
}

// GradeFor maps an R multiple to a grade
func GradeFor(rMultiple float64) contracts.TradeGrade {
	switch {
	case rMultiple >= 2:
		return contracts.GradeElite
	case rMultiple >= 1:
		return contracts.GradeGood
	case rMultiple >= 0:
		return contracts.GradeAverage
	default:
		return contracts.GradePoor
	}
}

// AddTrade validates and journals a trade. A missing grade is derived from the R multiple.
func (j *Journal) AddTrade(t contracts.PlaybookTrade) (contracts.PlaybookTrade, error) {
	if !t.Direction.IsValid() {
		return contracts.PlaybookTrade{}, fmt.Errorf("%w: direction %q", ErrInvalidTrade, t.Direction)
	}
	if t.EntryPrice <= 0 || t.LotSize <= 0 {
		return contracts.PlaybookTrade{}, fmt.Errorf("%w: entry price and lot size must be positive", ErrInvalidTrade)
	}
	if t.Grade == "" || t.Grade == contracts.GradeAll {
		t.Grade = GradeFor(t.RMultiple)
	}
	if !t.Grade.IsValid() {
		return contracts.PlaybookTrade{}, fmt.Errorf("%w: grade %q", ErrInvalidTrade, t.Grade)
	}
	if t.Result == "" {
		t.Result = contracts.ResultRunning
	}
	if t.Symbol == "" {
		t.Symbol = sample.GoldSymbol
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if t.ID == "" {
		t.ID = j.gen.ID()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = j.gen.Now()
	}
	j.trades = append([]contracts.PlaybookTrade{t}, j.trades...)
	j.view.Set(j.snapshotLocked())

	j.logger.WithFields(map[string]interface{}{
		"trade_id": t.ID,
		"grade":    t.Grade,
	}).Info("Trade journaled")
	return t, nil
}

// Trades returns trades of one grade; GradeAll or "" returns every trade
func (j *Journal) Trades(grade contracts.TradeGrade) []contracts.PlaybookTrade {
	j.mu.Lock()
	defer j.mu.Unlock()

	if grade == "" || grade == contracts.GradeAll {
		return append([]contracts.PlaybookTrade(nil), j.trades...)
	}
	out := make([]contracts.PlaybookTrade, 0, len(j.trades))
	for _, t := range j.trades {
		if t.Grade == grade {
			out = append(out, t)
		}
	}
	return out
}

// AddEntry journals a free-form note
func (j *Journal) AddEntry(e contracts.JournalEntry) (contracts.JournalEntry, error) {
	if e.Title == "" {
		return contracts.JournalEntry{}, errors.New("journal entry title is required")
	}
	if e.Type == "" {
		e.Type = contracts.EntryTradeAnalysis
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if e.ID == "" {
		e.ID = j.gen.ID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = j.gen.Now()
	}
	j.entries = append([]contracts.JournalEntry{e}, j.entries...)
	j.view.Set(j.snapshotLocked())
	return e, nil
}

// Entries returns the journal notes, newest first
func (j *Journal) Entries() []contracts.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]contracts.JournalEntry(nil), j.entries...)
}

// Stats computes the summary over all trades
func (j *Journal) Stats() Stats {
	j.mu.Lock()
	defer j.mu.Unlock()
	return computeStats(j.trades)
}

func computeStats(trades []contracts.PlaybookTrade) Stats {
	var st Stats
	closed := 0
	rSum := 0.0
	for _, t := range trades {
		st.TotalTrades++
		st.TotalPnL += t.PnL
		rSum += t.RMultiple
		switch t.Result {
		case contracts.ResultWin:
			st.Wins++
		case contracts.ResultLoss:
			st.Losses++
		}
		if t.Result.IsClosed() {
			closed++
		}
	}
	if closed > 0 {
		st.WinRate = float64(st.Wins) / float64(closed)
	}
	if st.TotalTrades > 0 {
		st.AverageRMultiple = rSum / float64(st.TotalTrades)
	}
	return st
}

func (j *Journal) snapshotLocked() Snapshot {
	return Snapshot{
		Trades:  append([]contracts.PlaybookTrade(nil), j.trades...),
		Entries: append([]contracts.JournalEntry(nil), j.entries...),
		Stats:   computeStats(j.trades),
	}
}
