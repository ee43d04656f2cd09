package wheel

import (
	"fmt"
	"math/rand/v2"
)

// Stats accumulates tallies across settled spins. It is a plain sink:
// the daemon loop feeds it results, so no locking is needed.
type Stats struct {
	totalSpins int
	totalDice  int
	dieCounts  [7]int // indexed by face 1..6
	houseWins  int
	spinAgains int
	singles    int
	doubles    int
	triples    int

	history    []string // newest first
	historyCap int
}

// NewStats creates a stats sink keeping at most historyCap result labels.
func NewStats(historyCap int) *Stats {
	if historyCap <= 0 {
		historyCap = 45
	}
	return &Stats{historyCap: historyCap}
}

// Record tallies one settled result.
//
// Combo counting follows the house rules: a sentinel triple is neither a
// triple nor a double, it lands in the singles bucket like any mixed
// roll. Die faces are only tallied for real dice combinations.
func (s *Stats) Record(r Result) {
	s.totalSpins++

	switch {
	case uniqueFaces(r.Dice) == 1 && r.Dice != houseWinSentinel && r.Dice != spinAgainSentinel:
		s.triples++
	case uniqueFaces(r.Dice) == 2:
		s.doubles++
	default:
		s.singles++
	}

	switch r.Category {
	case CategoryHouseWin:
		s.houseWins++
	case CategorySpinAgain:
		s.spinAgains++
	default:
		for _, die := range r.Dice {
			if die >= 1 && die <= 6 {
				s.dieCounts[die]++
				s.totalDice++
			}
		}
	}

	s.history = append([]string{r.Label}, s.history...)
	if len(s.history) > s.historyCap {
		s.history = s.history[:s.historyCap]
	}
}

// History returns the recorded result labels, newest first.
func (s *Stats) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// LastN returns up to the n most recent result labels, newest first.
func (s *Stats) LastN(n int) []string {
	if n > len(s.history) {
		n = len(s.history)
	}
	out := make([]string, n)
	copy(out, s.history[:n])
	return out
}

// Snapshot is an externally consumable copy of the tallies, shaped for
// JSON transport to UI clients.
type Snapshot struct {
	TotalSpins int      `json:"total_spins"`
	TotalDice  int      `json:"total_dice"`
	DieCounts  [7]int   `json:"die_counts"` // index 0 unused
	HouseWins  int      `json:"house_wins"`
	SpinAgains int      `json:"spin_agains"`
	Singles    int      `json:"singles"`
	Doubles    int      `json:"doubles"`
	Triples    int      `json:"triples"`
	History    []string `json:"history"`
}

func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		TotalSpins: s.totalSpins,
		TotalDice:  s.totalDice,
		DieCounts:  s.dieCounts,
		HouseWins:  s.houseWins,
		SpinAgains: s.spinAgains,
		Singles:    s.singles,
		Doubles:    s.doubles,
		Triples:    s.triples,
		History:    s.History(),
	}
}

// WindowStats tallies just the n most recent results, recomputed from
// the history labels so it always agrees with what is on screen.
type WindowStats struct {
	DieCounts  [7]int
	HouseWins  int
	SpinAgains int
	TotalDice  int
	Spins      int
}

func (s *Stats) Window(n int) WindowStats {
	var w WindowStats
	for _, label := range s.LastN(n) {
		w.Spins++
		switch label {
		case "House Wins":
			w.HouseWins++
		case "Spin Again":
			w.SpinAgains++
		default:
			for _, die := range parseDiceLabel(label) {
				if die >= 1 && die <= 6 {
					w.DieCounts[die]++
					w.TotalDice++
				}
			}
		}
	}
	return w
}

func parseDiceLabel(label string) []int {
	var a, b, c int
	if n, err := fmt.Sscanf(label, "%d - %d - %d", &a, &b, &c); err != nil || n != 3 {
		return nil
	}
	return []int{a, b, c}
}

// Simulate performs n instant spins against the wheel face, with no
// animation, recording each result. Used to seed believable statistics
// before opening the floor.
func Simulate(s *Stats, segs []Segment, n int, rng *rand.Rand) {
	for range n {
		idx := rng.IntN(len(segs))
		s.Record(Classify(idx, segs[idx]))
	}
}
