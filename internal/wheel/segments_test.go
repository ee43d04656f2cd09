package wheel

import "testing"

func TestDefaultSegmentsShape(t *testing.T) {
	segs := DefaultSegments()
	if len(segs) != 54 {
		t.Fatalf("wheel face has %d segments, want 54", len(segs))
	}
	houseWins, spinAgains := 0, 0
	for i, s := range segs {
		switch s.Dice {
		case houseWinSentinel:
			houseWins++
		case spinAgainSentinel:
			spinAgains++
		default:
			for _, d := range s.Dice {
				if d < 1 || d > 6 {
					t.Fatalf("segment %d has out-of-range die %d", i, d)
				}
			}
		}
	}
	if houseWins != 2 {
		t.Errorf("house win segments = %d, want 2", houseWins)
	}
	if spinAgains != 4 {
		t.Errorf("spin again segments = %d, want 4", spinAgains)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		dice  [3]int
		label string
		cat   Category
		color FlashColor
	}{
		{[3]int{0, 0, 0}, "House Wins", CategoryHouseWin, FlashRed},
		{[3]int{9, 9, 9}, "Spin Again", CategorySpinAgain, FlashGreen},
		{[3]int{5, 5, 5}, "5 - 5 - 5", CategoryTriple, FlashWhite},
		{[3]int{3, 3, 4}, "3 - 3 - 4", CategoryDouble, FlashWhite},
		{[3]int{4, 5, 6}, "4 - 5 - 6", CategorySingle, FlashWhite},
	}
	for _, c := range cases {
		r := Classify(7, Segment{Dice: c.dice})
		if r.Index != 7 {
			t.Errorf("%v: index %d, want 7", c.dice, r.Index)
		}
		if r.Label != c.label {
			t.Errorf("%v: label %q, want %q", c.dice, r.Label, c.label)
		}
		if r.Category != c.cat {
			t.Errorf("%v: category %v, want %v", c.dice, r.Category, c.cat)
		}
		if r.Color != c.color {
			t.Errorf("%v: color %v, want %v", c.dice, r.Color, c.color)
		}
	}
}

func TestPayoutTableCoversWheel(t *testing.T) {
	total := 0
	for _, row := range PayoutTable() {
		total += row.Segments
	}
	if total != 54 {
		t.Fatalf("payout table covers %d segments, want 54", total)
	}
}
