package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cartoprint/backend/internal/domain/poster"
	"github.com/cartoprint/backend/internal/infrastructure/osm"
	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"
)

// Options describes a single poster render.
type Options struct {
	City      string
	Country   string
	Center    osm.Point
	Size      poster.Size
	DPI       int
	Watermark bool // previews carry a rotated PREVIEW overlay
}

// Renderer draws posters onto a raster canvas.
type Renderer struct {
	fontsDir string
	logger   *zap.Logger
}

// NewRenderer creates a renderer. fontsDir may be empty; a built-in
// bitmap face is used when the TTF files are missing.
func NewRenderer(fontsDir string, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{fontsDir: fontsDir, logger: logger}
}

// Render draws the poster and returns the image.
func (r *Renderer) Render(data *osm.MapData, theme poster.Theme, opts Options) (image.Image, error) {
	if opts.Size.WidthIn <= 0 || opts.Size.HeightIn <= 0 || opts.DPI <= 0 {
		return nil, fmt.Errorf("render: invalid canvas %gx%g in at %d dpi",
			opts.Size.WidthIn, opts.Size.HeightIn, opts.DPI)
	}

	width := int(opts.Size.WidthIn * float64(opts.DPI))
	height := int(opts.Size.HeightIn * float64(opts.DPI))
	dc := gg.NewContext(width, height)

	dc.SetHexColor(theme.Background)
	dc.Clear()

	proj := newProjection(data.Bounds, width, height)

	// Layer order: polygons underneath, then roads, then overlays.
	r.drawPolygons(dc, proj, data.Water, theme.Water)
	r.drawPolygons(dc, proj, data.Parks, theme.Parks)
	r.drawRoads(dc, proj, data.Roads, theme, opts.DPI)
	r.drawGradients(dc, theme, width, height)
	r.drawText(dc, theme, opts, width, height)

	if opts.Watermark {
		r.drawWatermark(dc, theme, width, height)
	}

	return dc.Image(), nil
}

// RenderToFile renders the poster and writes it as PNG.
func (r *Renderer) RenderToFile(data *osm.MapData, theme poster.Theme, opts Options, path string) error {
	img, err := r.Render(data, theme, opts)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("render: create %s: %w", path, err)
	}
	defer f.Close()
	return EncodePNG(f, img)
}

// EncodePNG writes the image as PNG with the encoder's best compression.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	return enc.Encode(w, img)
}

// projection maps WGS84 coordinates into canvas pixels, filling the
// canvas with the bounding box.
type projection struct {
	bounds osm.BBox
	width  float64
	height float64
}

func newProjection(b osm.BBox, width, height int) projection {
	return projection{bounds: b, width: float64(width), height: float64(height)}
}

func (p projection) toCanvas(pt osm.Point) (float64, float64) {
	x := (pt.Lon - p.bounds.West) / (p.bounds.East - p.bounds.West) * p.width
	y := (p.bounds.North - pt.Lat) / (p.bounds.North - p.bounds.South) * p.height
	return x, y
}

func (r *Renderer) drawPolygons(dc *gg.Context, proj projection, polys []osm.Polygon, hexColor string) {
	if len(polys) == 0 {
		return
	}
	dc.SetHexColor(hexColor)
	for _, poly := range polys {
		for i, pt := range poly {
			x, y := proj.toCanvas(pt)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.ClosePath()
	}
	dc.Fill()
}

func (r *Renderer) drawRoads(dc *gg.Context, proj projection, roads []osm.Way, theme poster.Theme, dpi int) {
	// Line widths are specified in points; convert to pixels for the DPI.
	scale := float64(dpi) / 72.0
	for _, way := range roads {
		style := theme.StyleForHighway(firstHighway(way.Highway))
		dc.SetHexColor(style.Color)
		dc.SetLineWidth(style.Width * scale)
		for i, pt := range way.Points {
			x, y := proj.toCanvas(pt)
			if i == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}
}

// firstHighway reduces a possibly multi-valued highway tag to its first
// entry (Overpass joins multiple values with semicolons).
func firstHighway(highway string) string {
	if i := strings.IndexByte(highway, ';'); i >= 0 {
		return highway[:i]
	}
	return highway
}

// drawGradients fades the top and bottom quarters of the canvas into the
// gradient color so the typography sits on a calm band.
func (r *Renderer) drawGradients(dc *gg.Context, theme poster.Theme, width, height int) {
	w := float64(width)
	h := float64(height)

	cr, cg, cb := hexToRGB(theme.GradientColor)

	// Bottom: opaque at the edge, transparent at 25% height.
	bottom := gg.NewLinearGradient(0, h, 0, h*0.75)
	bottom.AddColorStop(0, rgba(cr, cg, cb, 1))
	bottom.AddColorStop(1, rgba(cr, cg, cb, 0))
	dc.SetFillStyle(bottom)
	dc.DrawRectangle(0, h*0.75, w, h*0.25)
	dc.Fill()

	// Top: opaque at the edge, transparent at 75% height.
	top := gg.NewLinearGradient(0, 0, 0, h*0.25)
	top.AddColorStop(0, rgba(cr, cg, cb, 1))
	top.AddColorStop(1, rgba(cr, cg, cb, 0))
	dc.SetFillStyle(top)
	dc.DrawRectangle(0, 0, w, h*0.25)
	dc.Fill()
}

func (r *Renderer) drawText(dc *gg.Context, theme poster.Theme, opts Options, width, height int) {
	w := float64(width)
	h := float64(height)
	scale := float64(opts.DPI) / 72.0

	title := layoutCityTitle(opts.City)

	dc.SetHexColor(theme.Text)

	var countryY, coordsY, ruleY float64
	if len(title.Lines) == 2 {
		r.setFace(dc, "Roboto-Bold.ttf", title.BaseSize*scale)
		dc.DrawStringAnchored(title.Lines[0], w/2, h*0.85, 0.5, 0.5)
		dc.DrawStringAnchored(title.Lines[1], w/2, h*0.88, 0.5, 0.5)
		countryY, coordsY, ruleY = 0.91, 0.94, 0.895
	} else {
		r.setFace(dc, "Roboto-Bold.ttf", title.BaseSize*scale)
		dc.DrawStringAnchored(title.Lines[0], w/2, h*0.86, 0.5, 0.5)
		countryY, coordsY, ruleY = 0.90, 0.93, 0.875
	}

	r.setFace(dc, "Roboto-Light.ttf", 22*scale)
	dc.DrawStringAnchored(strings.ToUpper(opts.Country), w/2, h*countryY, 0.5, 0.5)

	r.setFace(dc, "Roboto-Regular.ttf", 14*scale)
	tr, tg, tb := hexToRGB(theme.Text)
	dc.SetRGBA(tr, tg, tb, 0.7)
	dc.DrawStringAnchored(formatCoordinates(opts.Center.Lat, opts.Center.Lon), w/2, h*coordsY, 0.5, 0.5)

	// Separator rule between title and country.
	dc.SetHexColor(theme.Text)
	dc.SetLineWidth(1 * scale)
	dc.DrawLine(w*0.4, h*ruleY, w*0.6, h*ruleY)
	dc.Stroke()

	// Attribution, bottom right.
	r.setFace(dc, "Roboto-Light.ttf", 8*scale)
	dc.SetRGBA(tr, tg, tb, 0.5)
	dc.DrawStringAnchored("© OpenStreetMap contributors", w*0.98, h*0.985, 1, 0.5)
}

func (r *Renderer) drawWatermark(dc *gg.Context, theme poster.Theme, width, height int) {
	w := float64(width)
	h := float64(height)

	r.setFace(dc, "Roboto-Bold.ttf", w/10)
	tr, tg, tb := hexToRGB(theme.Text)
	dc.SetRGBA(tr, tg, tb, 0.15)

	dc.Push()
	dc.RotateAbout(gg.Radians(-45), w/2, h/2)
	dc.DrawStringAnchored("PREVIEW", w/2, h/2, 0.5, 0.5)
	dc.Pop()
}

// setFace loads a TTF face from the fonts directory, falling back to the
// built-in bitmap face when unavailable.
func (r *Renderer) setFace(dc *gg.Context, file string, points float64) {
	if r.fontsDir != "" {
		path := filepath.Join(r.fontsDir, file)
		if err := dc.LoadFontFace(path, points); err == nil {
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// hexToRGB parses a #RRGGBB color into 0..1 components.
func hexToRGB(hex string) (float64, float64, float64) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 0, 0, 0
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0
	}
	return float64(rv) / 255, float64(gv) / 255, float64(bv) / 255
}

func rgba(r, g, b, a float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: uint8(a * 255),
	}
}
