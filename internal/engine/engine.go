package engine

import (
	"fmt"

	"gorm.io/gorm"
)

// ContentKind identifies what a vote or interaction targets.
type ContentKind string

const (
	ContentQuestion ContentKind = "question"
	ContentAnswer   ContentKind = "answer"
)

// Direction of a vote toggle request.
type Direction int

const (
	DirectionUp   Direction = 1
	DirectionDown Direction = -1
)

// Transition classifies the outcome of a vote toggle. Reputation deltas are
// keyed by this classification, not by count differences, which are not
// attributable to a voter under concurrent mutation.
type Transition int

const (
	TransitionAdded Transition = iota
	TransitionRemoved
	TransitionSwitched
)

func (t Transition) String() string {
	switch t {
	case TransitionAdded:
		return "added"
	case TransitionRemoved:
		return "removed"
	case TransitionSwitched:
		return "switched"
	}
	return fmt.Sprintf("transition(%d)", int(t))
}

// ActionKind is the closed set of loggable user actions.
type ActionKind string

const (
	ActionView     ActionKind = "view"
	ActionUpvote   ActionKind = "upvote"
	ActionDownvote ActionKind = "downvote"
	ActionAnswer   ActionKind = "answer"
	ActionAsk      ActionKind = "ask"
)

// Engine is the consistency core for votes, reputation, interaction logging
// and recommendations. It holds no authoritative state of its own; the
// database is the single source of truth and every operation runs in one
// bounded transaction.
type Engine struct {
	db    *gorm.DB
	rules ReputationRules
}

func New(db *gorm.DB) *Engine {
	return NewWithRules(db, DefaultReputationRules())
}

func NewWithRules(db *gorm.DB, rules ReputationRules) *Engine {
	return &Engine{db: db, rules: rules}
}

func validKind(kind ContentKind) bool {
	return kind == ContentQuestion || kind == ContentAnswer
}
