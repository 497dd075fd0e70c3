package screenshot

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
)

// Capturer produces the image to upload
type Capturer interface {
	Capture(ctx context.Context) (image.Image, error)
}

// Headline is the set of numbers the dashboard card shows
type Headline struct {
	Price       float64
	PriceChange float64
	TodaysPnL   float64
	WinRate     float64 // 0..100
	BotsActive  int
	BotsTotal   int
}

// Card geometry
const (
	CardWidth  = 640
	CardHeight = 360
)

var (
	colorBackground = color.RGBA{R: 0x12, G: 0x14, B: 0x1c, A: 0xff}
	colorGold       = color.RGBA{R: 0xd4, G: 0xaf, B: 0x37, A: 0xff}
	colorGreen      = color.RGBA{R: 0x2e, G: 0xcc, B: 0x71, A: 0xff}
	colorRed        = color.RGBA{R: 0xe7, G: 0x4c, B: 0x3c, A: 0xff}
	colorTrack      = color.RGBA{R: 0x2a, G: 0x2e, B: 0x3a, A: 0xff}
	colorBlue       = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}
)

// DashboardCapturer renders a status card from the current headline numbers
type DashboardCapturer struct {
	source func() Headline
}

// NewDashboardCapturer creates a capturer reading numbers from source
func NewDashboardCapturer(source func() Headline) *DashboardCapturer {
	return &DashboardCapturer{source: source}
}

// Capture draws the card: a gold header, then bars for price change, today's P&L,
// win rate and active bots.
func (c *DashboardCapturer) Capture(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h := c.source()

	img := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: colorBackground}, image.Point{}, draw.Src)
	fill(img, image.Rect(0, 0, CardWidth, 24), colorGold)

	signedBar(img, 60, h.PriceChange, 20)
	signedBar(img, 120, h.TodaysPnL, 500)
	ratioBar(img, 180, h.WinRate/100, colorBlue)

	active := 0.0
	if h.BotsTotal > 0 {
		active = float64(h.BotsActive) / float64(h.BotsTotal)
	}
	ratioBar(img, 240, active, colorGold)

	return img, nil
}

const (
	barLeft   = 40
	barRight  = CardWidth - 40
	barHeight = 28
)

// signedBar grows right in green or left in red from the centre, scaled so |v| == scale fills half
func signedBar(img draw.Image, y int, v, scale float64) {
	fill(img, image.Rect(barLeft, y, barRight, y+barHeight), colorTrack)

	mid := (barLeft + barRight) / 2
	half := float64(barRight-mid) * math.Min(math.Abs(v)/scale, 1)
	if v >= 0 {
		fill(img, image.Rect(mid, y, mid+int(half), y+barHeight), colorGreen)
	} else {
		fill(img, image.Rect(mid-int(half), y, mid, y+barHeight), colorRed)
	}
}

// ratioBar fills a track from the left by ratio in [0,1]
func ratioBar(img draw.Image, y int, ratio float64, c color.Color) {
	fill(img, image.Rect(barLeft, y, barRight, y+barHeight), colorTrack)
	ratio = math.Max(0, math.Min(ratio, 1))
	w := int(float64(barRight-barLeft) * ratio)
	fill(img, image.Rect(barLeft, y, barLeft+w, y+barHeight), c)
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}
