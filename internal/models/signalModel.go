package models

import (
	"time"
)

type SignalDirection string

const (
	SignalBuy  SignalDirection = "buy"
	SignalSell SignalDirection = "sell"
	SignalHold SignalDirection = "hold"
)

// Screen names used in signal provenance.
const (
	ScreenTrend      = "trend"
	ScreenCorrection = "correction"
	ScreenEntry      = "entry"
)

// ScreenVote records one screen's contribution to an aggregate signal.
type ScreenVote struct {
	Screen    string
	Timeframe Timeframe
	Direction SignalDirection
	Detail    string
}

// SignalModel is a directional trading signal with provenance. It is
// immutable once produced; downstream stages aggregate, never mutate.
type SignalModel struct {
	ID         string          `gorm:"primaryKey"`
	Symbol     string          `gorm:"index;not null"`
	Strategy   string          `gorm:"index;not null"`
	Timeframe  Timeframe       `gorm:"not null"`
	Direction  SignalDirection `gorm:"index;not null"`
	Price      float64         `gorm:"type:decimal(20,8)"`
	Confidence float64         `gorm:"type:decimal(5,4)"`
	Rationale  string
	Votes      []ScreenVote `gorm:"-"`
	CreatedAt  time.Time    `gorm:"index;not null"`
}

// TableName sets the table name for the signal journal
func (SignalModel) TableName() string {
	return "signals"
}

// IsActionable reports whether the signal calls for a trade.
func (s SignalModel) IsActionable() bool {
	return s.Direction == SignalBuy || s.Direction == SignalSell
}
