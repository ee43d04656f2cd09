package wheel

import "fmt"

// Segment is one arc of the wheel face: a combination of three die
// faces, or one of the two reserved sentinel triples.
type Segment struct {
	Dice [3]int
}

// Sentinel triples. These never occur as real dice combinations (a die
// face is 1..6) so they unambiguously mark the two special segments.
var (
	houseWinSentinel  = [3]int{0, 0, 0}
	spinAgainSentinel = [3]int{9, 9, 9}
)

// Category classifies a settled result for statistics.
type Category int

const (
	CategoryHouseWin Category = iota
	CategorySpinAgain
	CategoryTriple
	CategoryDouble
	CategorySingle
)

func (c Category) String() string {
	switch c {
	case CategoryHouseWin:
		return "house_win"
	case CategorySpinAgain:
		return "spin_again"
	case CategoryTriple:
		return "triple"
	case CategoryDouble:
		return "double"
	case CategorySingle:
		return "single"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// FlashColor selects the indicator flash announced for a result.
type FlashColor int

const (
	FlashWhite FlashColor = iota
	FlashRed
	FlashGreen
)

func (c FlashColor) String() string {
	switch c {
	case FlashRed:
		return "red"
	case FlashGreen:
		return "green"
	default:
		return "white"
	}
}

// Result is the fully classified outcome of a settled spin.
type Result struct {
	Index    int        `json:"index"`
	Dice     [3]int     `json:"dice"`
	Label    string     `json:"label"`
	Category Category   `json:"-"`
	Color    FlashColor `json:"-"`
}

// Classify maps a landed segment to its outcome. The sentinel triples
// bypass the equality rules: house win flashes red, spin again flashes
// green, everything else flashes white.
func Classify(index int, s Segment) Result {
	r := Result{Index: index, Dice: s.Dice}
	switch s.Dice {
	case houseWinSentinel:
		r.Label = "House Wins"
		r.Category = CategoryHouseWin
		r.Color = FlashRed
		return r
	case spinAgainSentinel:
		r.Label = "Spin Again"
		r.Category = CategorySpinAgain
		r.Color = FlashGreen
		return r
	}
	r.Label = fmt.Sprintf("%d - %d - %d", s.Dice[0], s.Dice[1], s.Dice[2])
	r.Color = FlashWhite
	switch uniqueFaces(s.Dice) {
	case 1:
		r.Category = CategoryTriple
	case 2:
		r.Category = CategoryDouble
	default:
		r.Category = CategorySingle
	}
	return r
}

func uniqueFaces(dice [3]int) int {
	seen := map[int]struct{}{}
	for _, d := range dice {
		seen[d] = struct{}{}
	}
	return len(seen)
}

// DefaultSegments returns the production wheel face: 54 segments in rim
// order, starting at the segment whose arc begins at 0 degrees. The
// ordering must match the printed wheel artwork.
func DefaultSegments() []Segment {
	dice := [][3]int{
		{4, 5, 6}, {1, 2, 4}, {5, 5, 5}, {3, 6, 6}, {0, 0, 0}, {5, 5, 6},
		{4, 4, 4}, {1, 2, 3}, {3, 3, 4}, {9, 9, 9}, {1, 4, 5}, {6, 6, 6},
		{1, 1, 4}, {1, 2, 6}, {1, 2, 4}, {5, 5, 5}, {3, 6, 6}, {1, 3, 4},
		{2, 5, 6}, {1, 4, 6}, {1, 2, 3}, {3, 3, 4}, {2, 3, 4}, {1, 4, 5},
		{9, 9, 9}, {1, 1, 2}, {3, 3, 3}, {4, 5, 6}, {1, 2, 2}, {2, 4, 5},
		{2, 3, 6}, {0, 0, 0}, {5, 5, 6}, {1, 4, 6}, {3, 3, 4}, {2, 2, 2},
		{2, 3, 6}, {9, 9, 9}, {1, 1, 2}, {3, 4, 6}, {4, 5, 6}, {1, 2, 2},
		{5, 5, 5}, {3, 6, 6}, {1, 1, 1}, {5, 5, 6}, {1, 4, 6}, {1, 2, 3},
		{3, 3, 4}, {2, 2, 2}, {4, 4, 5}, {9, 9, 9}, {2, 3, 6}, {1, 3, 5},
	}
	segs := make([]Segment, len(dice))
	for i, d := range dice {
		segs[i] = Segment{Dice: d}
	}
	return segs
}

// PayoutRow is one line of the published payout and odds table.
type PayoutRow struct {
	Outcome  string
	Payout   string
	Segments int
}

// PayoutTable returns the static house odds, out of 54 segments.
func PayoutTable() []PayoutRow {
	return []PayoutRow{
		{"TRIPLE", "3 to 1", 1},
		{"DOUBLE", "2 to 1", 5},
		{"SINGLE", "1 to 1", 13},
		{"GREEN", "Push", 4},
		{"BLACK", "Lose Bet", 31},
	}
}
