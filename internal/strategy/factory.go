package strategy

import (
	"fmt"
	"strings"
)

// Kind names a built-in strategy.
type Kind string

const (
	KindRandom Kind = "random"
	KindGreedy Kind = "greedy"
)

// New creates a built-in strategy by kind. seed is only used by strategies
// that draw random numbers.
func New(kind Kind, seed int64) (Strategy, error) {
	switch Kind(strings.ToLower(string(kind))) {
	case KindRandom:
		return NewRandom(seed), nil
	case KindGreedy:
		return NewGreedy(), nil
	default:
		return nil, fmt.Errorf("unknown strategy kind: %q", kind)
	}
}
