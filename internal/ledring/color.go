// Package ledring reconstructs the wheel's announced state on a ring of
// RGB LEDs. The ring and the wheel share no memory; everything here is
// driven by the state strings received over the bridge plus local time.
package ledring

import colorful "github.com/lucasb-eyer/go-colorful"

// RGB is one LED color, 8 bits per channel.
type RGB struct {
	R, G, B uint8
}

var (
	Black = RGB{0, 0, 0}
	Red   = RGB{255, 0, 0}
	Green = RGB{0, 255, 0}
	White = RGB{255, 255, 255}
)

func (c RGB) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) RGB {
	cl := c.Clamped()
	return RGB{
		R: uint8(cl.R*255 + 0.5),
		G: uint8(cl.G*255 + 0.5),
		B: uint8(cl.B*255 + 0.5),
	}
}

// Blend interpolates between two colors in RGB space. t=0 yields a,
// t=1 yields b.
func Blend(a, b RGB, t float64) RGB {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return fromColorful(a.colorful().BlendRgb(b.colorful(), t))
}

// WithValue returns the color re-lit to the given HSV value in [0,1],
// keeping hue and saturation. Used for breathing, where only the
// brightness of the idle color oscillates.
func (c RGB) WithValue(v float64) RGB {
	h, s, _ := c.colorful().Hsv()
	return fromColorful(colorful.Hsv(h, s, v))
}

// RainbowWheel maps a position on a 256-step color wheel to a color.
// The transitions run red to green to blue and back to red, matching
// the classic NeoPixel helper so the ring animation looks identical to
// the deployed firmware.
func RainbowWheel(pos uint8) RGB {
	switch {
	case pos < 85:
		return RGB{pos * 3, 255 - pos*3, 0}
	case pos < 170:
		pos -= 85
		return RGB{255 - pos*3, 0, pos * 3}
	default:
		pos -= 170
		return RGB{0, pos * 3, 255 - pos*3}
	}
}
