package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Observation is a single recorded price of an offer.
type Observation struct {
	Date  time.Time
	Price int64
}

// Ledger is the append-only price history of every offer, keyed by offer id.
type Ledger struct {
	history map[uuid.UUID][]Observation
}

func NewLedger() *Ledger {
	return &Ledger{
		history: make(map[uuid.UUID][]Observation),
	}
}

// Append records an observation. Identical timestamps are kept as separate entries.
func (l *Ledger) Append(id uuid.UUID, date time.Time, price int64) {
	l.history[id] = append(l.history[id], Observation{Date: date, Price: price})
}

// DiscardAll drops the whole history of an offer.
func (l *Ledger) DiscardAll(id uuid.UUID) {
	delete(l.history, id)
}

// History returns a copy of the observations of an offer in insertion order.
func (l *Ledger) History(id uuid.UUID) []Observation {
	obs := l.history[id]
	if len(obs) == 0 {
		return nil
	}
	out := make([]Observation, len(obs))
	copy(out, obs)
	return out
}

// Offers lists ids that have at least one observation.
func (l *Ledger) Offers() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l.history))
	for id, obs := range l.history {
		if len(obs) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
