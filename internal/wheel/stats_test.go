package wheel

import (
	"math/rand/v2"
	"testing"
)

func record(s *Stats, dice [3]int) {
	s.Record(Classify(0, Segment{Dice: dice}))
}

func TestStatsTallies(t *testing.T) {
	s := NewStats(45)
	record(s, [3]int{4, 5, 6}) // single
	record(s, [3]int{3, 3, 4}) // double
	record(s, [3]int{5, 5, 5}) // triple
	record(s, [3]int{0, 0, 0}) // house win
	record(s, [3]int{9, 9, 9}) // spin again

	snap := s.Snapshot()
	if snap.TotalSpins != 5 {
		t.Fatalf("total spins %d, want 5", snap.TotalSpins)
	}
	if snap.Singles != 3 || snap.Doubles != 1 || snap.Triples != 1 {
		// Sentinels count as singles in the combo buckets.
		t.Fatalf("combos = %d/%d/%d, want 3/1/1", snap.Singles, snap.Doubles, snap.Triples)
	}
	if snap.HouseWins != 1 || snap.SpinAgains != 1 {
		t.Fatalf("house wins %d spin agains %d, want 1/1", snap.HouseWins, snap.SpinAgains)
	}
	// Sentinel rolls contribute no die faces.
	if snap.TotalDice != 9 {
		t.Fatalf("total dice %d, want 9", snap.TotalDice)
	}
	if snap.DieCounts[5] != 4 {
		t.Fatalf("face 5 count %d, want 4", snap.DieCounts[5])
	}
}

func TestHistoryNewestFirstAndCapped(t *testing.T) {
	s := NewStats(3)
	record(s, [3]int{1, 2, 3})
	record(s, [3]int{4, 5, 6})
	record(s, [3]int{0, 0, 0})
	record(s, [3]int{9, 9, 9})

	h := s.History()
	want := []string{"Spin Again", "House Wins", "4 - 5 - 6"}
	if len(h) != len(want) {
		t.Fatalf("history length %d, want %d", len(h), len(want))
	}
	for i := range want {
		if h[i] != want[i] {
			t.Fatalf("history[%d] = %q, want %q", i, h[i], want[i])
		}
	}
	if got := s.LastN(2); len(got) != 2 || got[0] != "Spin Again" {
		t.Fatalf("LastN(2) = %v", got)
	}
}

func TestWindowRecomputesFromLabels(t *testing.T) {
	s := NewStats(45)
	record(s, [3]int{1, 2, 3})
	record(s, [3]int{0, 0, 0})
	record(s, [3]int{6, 6, 6})

	w := s.Window(5)
	if w.Spins != 3 {
		t.Fatalf("window spins %d, want 3", w.Spins)
	}
	if w.HouseWins != 1 {
		t.Fatalf("window house wins %d, want 1", w.HouseWins)
	}
	if w.DieCounts[6] != 3 || w.TotalDice != 6 {
		t.Fatalf("window dice = %v total %d", w.DieCounts, w.TotalDice)
	}
}

func TestSimulateRecordsEverySpin(t *testing.T) {
	s := NewStats(45)
	Simulate(s, DefaultSegments(), 45, rand.New(rand.NewPCG(11, 0)))
	snap := s.Snapshot()
	if snap.TotalSpins != 45 {
		t.Fatalf("simulated %d spins, want 45", snap.TotalSpins)
	}
	if len(snap.History) != 45 {
		t.Fatalf("history has %d entries, want 45", len(snap.History))
	}
	if snap.Singles+snap.Doubles+snap.Triples != 45 {
		t.Fatalf("combo buckets sum to %d, want 45", snap.Singles+snap.Doubles+snap.Triples)
	}
}
