// Package progression picks the next agenda to present, favouring easy
// agendas early in a game and flattening toward uniform as it goes on.
package progression

import (
	"math"
	"math/rand"
	"sync"

	"svw.info/propagenda/internal/domain"
)

// MaxRoundsCap bounds the number of agendas played in one game.
const MaxRoundsCap = 10

// steepness scales how strongly difficulty is matched to progress.
const steepness = 3

// Uniform returns a float in [0,1).
type Uniform func() float64

// Seeded returns a deterministic Uniform that is safe for concurrent use.
func Seeded(seed int64) Uniform {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))
	return func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rng.Float64()
	}
}

// MaxRounds is the number of rounds a game over n agendas lasts.
func MaxRounds(n int) int {
	return min(MaxRoundsCap, n)
}

// Weight is the sampling weight of an agenda at the given progress in [0,1].
func Weight(difficulty, progress float64) float64 {
	return math.Exp(-(difficulty/10 - progress) * steepness)
}

// Progress is the completed fraction, measured against the full catalog size.
func Progress(remaining, total int) float64 {
	if total == 0 {
		return 0
	}
	return 1 - float64(remaining)/float64(total)
}

// SelectNext draws the next agenda from those not yet completed. It returns
// false when the game is over: the round cap is reached or nothing remains.
// A nil uniform uses the process-wide source.
func SelectNext(agendas []domain.Agenda, completed []string, uniform Uniform) (domain.Agenda, bool) {
	if len(completed) >= MaxRounds(len(agendas)) {
		return domain.Agenda{}, false
	}
	done := make(map[string]struct{}, len(completed))
	for _, id := range completed {
		done[id] = struct{}{}
	}
	remaining := make([]domain.Agenda, 0, len(agendas))
	for _, a := range agendas {
		if _, ok := done[a.ID]; !ok {
			remaining = append(remaining, a)
		}
	}
	if len(remaining) == 0 {
		return domain.Agenda{}, false
	}

	progress := Progress(len(remaining), len(agendas))
	weights := make([]float64, len(remaining))
	total := 0.0
	for i, a := range remaining {
		weights[i] = Weight(a.Difficulty, progress)
		total += weights[i]
	}

	if uniform == nil {
		uniform = rand.Float64
	}
	u := uniform() * total
	for i, w := range weights {
		u -= w
		if u <= 0 {
			return remaining[i], true
		}
	}
	return remaining[0], true
}

// Selector binds SelectNext to one uniform source.
type Selector struct {
	uniform Uniform
}

// NewSelector returns a Selector drawing from u; nil uses the process-wide source.
func NewSelector(u Uniform) *Selector { return &Selector{uniform: u} }

// Next delegates to SelectNext with the selector's source.
func (s *Selector) Next(agendas []domain.Agenda, completed []string) (domain.Agenda, bool) {
	return SelectNext(agendas, completed, s.uniform)
}
