package ledring

import "testing"

func TestBlendEndpoints(t *testing.T) {
	a, b := RGB{10, 20, 30}, RGB{200, 100, 0}
	if got := Blend(a, b, 0); got != a {
		t.Fatalf("Blend(t=0) = %v, want %v", got, a)
	}
	if got := Blend(a, b, 1); got != b {
		t.Fatalf("Blend(t=1) = %v, want %v", got, b)
	}
	mid := Blend(a, b, 0.5)
	if mid.R <= a.R || mid.R >= b.R {
		t.Fatalf("midpoint red %d not between %d and %d", mid.R, a.R, b.R)
	}
}

func TestRainbowWheelBranches(t *testing.T) {
	cases := []struct {
		pos  uint8
		want RGB
	}{
		{0, RGB{0, 255, 0}},
		{84, RGB{252, 3, 0}},
		{85, RGB{255, 0, 0}},
		{169, RGB{3, 0, 252}},
		{170, RGB{0, 0, 255}},
		{255, RGB{0, 255, 0}},
	}
	for _, c := range cases {
		if got := RainbowWheel(c.pos); got != c.want {
			t.Errorf("RainbowWheel(%d) = %v, want %v", c.pos, got, c.want)
		}
	}
}

func TestWithValueKeepsHue(t *testing.T) {
	c := RGB{0, 50, 0}
	lit := c.WithValue(200.0 / 255)
	if lit.R != 0 || lit.B != 0 {
		t.Fatalf("WithValue leaked into other channels: %v", lit)
	}
	if lit.G < 195 || lit.G > 205 {
		t.Fatalf("WithValue green %d, want about 200", lit.G)
	}
}
