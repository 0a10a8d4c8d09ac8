package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"
)

// Rendering layout: plates are drawn to scale, stacked vertically, length
// along the horizontal axis.
const (
	renderScale   = 4.0
	renderPadding = 24
	renderGap     = 32
	headerHeight  = 48
	maxRenderDim  = 4000
)

var (
	colorBackdrop = color.RGBA{R: 0xf7, G: 0xf7, B: 0xf2, A: 0xff}
	colorPlate    = color.RGBA{R: 0xe8, G: 0xe4, B: 0xda, A: 0xff}
	colorStroke   = color.RGBA{R: 0x44, G: 0x44, B: 0x44, A: 0xff}
	colorText     = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}

	// One fill per item type, cycled.
	itemPalette = []color.RGBA{
		{R: 0x7f, G: 0xb3, B: 0xd5, A: 0xff},
		{R: 0xf5, G: 0xb0, B: 0x41, A: 0xff},
		{R: 0x96, G: 0xc9, B: 0x8b, A: 0xff},
		{R: 0xd5, G: 0x8a, B: 0x94, A: 0xff},
		{R: 0xb7, G: 0x95, B: 0xd0, A: 0xff},
		{R: 0x8f, G: 0xc2, B: 0xbb, A: 0xff},
	}
)

type renderLayout struct {
	Scale         float64
	Width, Height int
	PlateW        int // scaled plate length (horizontal)
	PlateH        int // scaled plate width (vertical)
}

func buildRenderLayout(plan *Plan) renderLayout {
	scale := renderScale
	// Keep very large stock sizes inside a sane canvas.
	for scale > 0.25 && float64(plan.Stock.Length)*scale > maxRenderDim {
		scale /= 2
	}
	plateW := int(float64(plan.Stock.Length) * scale)
	plateH := int(float64(plan.Stock.Width) * scale)
	width := plateW + 2*renderPadding
	height := headerHeight + len(plan.Plates)*(plateH+renderGap) + renderPadding
	return renderLayout{Scale: scale, Width: width, Height: height, PlateW: plateW, PlateH: plateH}
}

func itemFill(itemType int) color.RGBA {
	return itemPalette[itemType%len(itemPalette)]
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// WriteSVG renders the plan's plates as a standalone SVG document.
func WriteSVG(plan *Plan, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create svg: %w", err)
	}
	defer f.Close()

	layout := buildRenderLayout(plan)
	canvas := svg.New(f)
	canvas.Start(layout.Width, layout.Height)
	canvas.Rect(0, 0, layout.Width, layout.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Text(renderPadding, 28,
		fmt.Sprintf("%s  plates=%d  utilization=%.1f%%", SolverName, plan.Summary.NumPlates, plan.Summary.TotalUtilization*100),
		fmt.Sprintf("fill:%s;font-size:14px;font-family:monospace;font-weight:bold", css(colorText)))

	for idx, plate := range plan.Plates {
		top := headerHeight + idx*(layout.PlateH+renderGap)
		canvas.Rect(renderPadding, top, layout.PlateW, layout.PlateH,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(colorPlate), css(colorStroke)))
		for _, it := range plate.Items {
			x := renderPadding + int(float64(it.X)*layout.Scale)
			y := top + int(float64(it.Y)*layout.Scale)
			w := int(float64(it.Length) * layout.Scale)
			h := int(float64(it.Width) * layout.Scale)
			canvas.Rect(x, y, w, h,
				fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1", css(itemFill(it.ItemType)), css(colorStroke)))
			if w > 24 && h > 14 {
				canvas.Text(x+4, y+12, fmt.Sprintf("t%d", it.ItemType),
					fmt.Sprintf("fill:%s;font-size:10px;font-family:monospace", css(colorText)))
			}
		}
		canvas.Text(renderPadding, top+layout.PlateH+14,
			fmt.Sprintf("plate %d  items=%d  utilization=%.1f%%", plate.PlateID, plate.NumItems, plate.Utilization*100),
			fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorText)))
	}

	canvas.End()
	return nil
}

// WritePNG renders the plan's plates as a PNG image.
func WritePNG(plan *Plan, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	layout := buildRenderLayout(plan)
	dc := gg.NewContext(layout.Width, layout.Height)
	dc.SetColor(colorBackdrop)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(colorText)
	dc.DrawString(fmt.Sprintf("%s  plates=%d  utilization=%.1f%%",
		SolverName, plan.Summary.NumPlates, plan.Summary.TotalUtilization*100), renderPadding, 28)

	for idx, plate := range plan.Plates {
		top := float64(headerHeight + idx*(layout.PlateH+renderGap))
		dc.SetColor(colorPlate)
		dc.DrawRectangle(renderPadding, top, float64(layout.PlateW), float64(layout.PlateH))
		dc.FillPreserve()
		dc.SetColor(colorStroke)
		dc.Stroke()

		for _, it := range plate.Items {
			x := renderPadding + float64(it.X)*layout.Scale
			y := top + float64(it.Y)*layout.Scale
			w := float64(it.Length) * layout.Scale
			h := float64(it.Width) * layout.Scale
			dc.SetColor(itemFill(it.ItemType))
			dc.DrawRectangle(x, y, w, h)
			dc.FillPreserve()
			dc.SetColor(colorStroke)
			dc.Stroke()
			if w > 24 && h > 14 {
				dc.SetColor(colorText)
				dc.DrawString(fmt.Sprintf("t%d", it.ItemType), x+4, y+12)
			}
		}

		dc.SetColor(colorText)
		dc.DrawString(fmt.Sprintf("plate %d  items=%d  utilization=%.1f%%",
			plate.PlateID, plate.NumItems, plate.Utilization*100), renderPadding, top+float64(layout.PlateH)+14)
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
