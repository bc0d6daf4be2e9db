package memory

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/aretw0/easel/pkg/domain"
)

const (
	renderPadding = 16.0
	// maxRenderSide caps the longest image side in pixels.
	maxRenderSide = 1024.0
	noteSize      = 200.0
	fillAlpha     = 77
)

// palette maps canvas colour names to display colours.
var palette = map[string]color.RGBA{
	"black":        {0x1d, 0x1d, 0x1d, 0xff},
	"grey":         {0x9f, 0xa8, 0xb2, 0xff},
	"white":        {0xff, 0xff, 0xff, 0xff},
	"red":          {0xe0, 0x31, 0x31, 0xff},
	"light-red":    {0xff, 0x87, 0x87, 0xff},
	"green":        {0x09, 0x92, 0x68, 0xff},
	"light-green":  {0x40, 0xc0, 0x57, 0xff},
	"blue":         {0x44, 0x65, 0xe9, 0xff},
	"light-blue":   {0x4b, 0xa1, 0xf1, 0xff},
	"orange":       {0xe1, 0x69, 0x19, 0xff},
	"yellow":       {0xf1, 0xac, 0x4b, 0xff},
	"violet":       {0xae, 0x3e, 0xc9, 0xff},
	"light-violet": {0xe0, 0x85, 0xf4, 0xff},
}

// RenderPNG rasterizes content as a PNG data URL on a white background.
// Children are drawn relative to their parent. Empty content renders to "".
func RenderPNG(content domain.Content) (string, error) {
	if len(content.Entities) == 0 {
		return "", nil
	}

	byID := make(map[string]domain.Entity, len(content.Entities))
	for _, e := range content.Entities {
		byID[e.ID] = e
	}
	origin := func(e domain.Entity) (float64, float64) {
		x, y := e.X, e.Y
		for seen := 0; !e.TopLevel() && seen < len(byID); seen++ {
			parent, ok := byID[e.ParentID]
			if !ok {
				break
			}
			x, y = x+parent.X, y+parent.Y
			e = parent
		}
		return x, y
	}

	var boxes []domain.Rect
	for _, e := range content.Entities {
		x, y := origin(e)
		b := e.Bounds()
		boxes = append(boxes, domain.Rect{X: x, Y: y, W: b.W, H: b.H})
	}
	view, _ := domain.Union(boxes...)

	w, h := view.W+2*renderPadding, view.H+2*renderPadding
	scale := math.Min(1, maxRenderSide/math.Max(w, h))
	dc := gg.NewContext(max(1, int(math.Round(w*scale))), max(1, int(math.Round(h*scale))))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(renderPadding-view.X, renderPadding-view.Y)
	dc.SetLineWidth(2)

	for _, e := range content.Entities {
		x, y := origin(e)
		drawEntity(dc, e, x, y)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func drawEntity(dc *gg.Context, e domain.Entity, x, y float64) {
	stroke := palette["black"]
	if c, ok := palette[propString(e, "color")]; ok {
		stroke = c
	}
	filled := propString(e, "fill") != "" && propString(e, "fill") != "none"
	w, _ := domain.Number(e.Props["w"])
	h, _ := domain.Number(e.Props["h"])

	switch e.Type {
	case "geo":
		if propString(e, "geo") == "ellipse" {
			dc.DrawEllipse(x+w/2, y+h/2, w/2, h/2)
		} else {
			dc.DrawRectangle(x, y, w, h)
		}
		paint(dc, stroke, filled)
	case "note":
		h = noteSize
		dc.DrawRectangle(x, y, noteSize, noteSize)
		paint(dc, stroke, true)
	case "line":
		points, _ := e.Props["points"].(map[string]any)
		a1, _ := points["a1"].(map[string]any)
		a2, _ := points["a2"].(map[string]any)
		drawLine(dc, x, y, a1, a2, stroke)
	case "arrow":
		start, _ := e.Props["start"].(map[string]any)
		end, _ := e.Props["end"].(map[string]any)
		drawLine(dc, x, y, start, end, stroke)
	}

	if text := propString(e, "text"); text != "" {
		dc.SetColor(stroke)
		dc.DrawString(text, x, y+h/2)
	}
}

// paint fills the current path with a translucent stroke colour when filled,
// then strokes it.
func paint(dc *gg.Context, stroke color.RGBA, filled bool) {
	if filled {
		dc.SetColor(color.NRGBA{R: stroke.R, G: stroke.G, B: stroke.B, A: fillAlpha})
		dc.FillPreserve()
	}
	dc.SetColor(stroke)
	dc.Stroke()
}

func drawLine(dc *gg.Context, x, y float64, from, to map[string]any, stroke color.RGBA) {
	x1, _ := domain.Number(from["x"])
	y1, _ := domain.Number(from["y"])
	x2, _ := domain.Number(to["x"])
	y2, _ := domain.Number(to["y"])
	dc.DrawLine(x+x1, y+y1, x+x2, y+y2)
	dc.SetColor(stroke)
	dc.Stroke()
}

func propString(e domain.Entity, key string) string {
	s, _ := e.Props[key].(string)
	return s
}
