// Package mapgen draws a printable PDF progress map (old-map style) of the
// grove: the side-scrolling strip with its bush zones, NPCs and the
// player's position, plus a ledger of the team and inventory.
package mapgen

import (
	"bytes"
	"fmt"
	"math"

	"github.com/jung-kurt/gofpdf/v2"

	"pocketgrove/internal/save"
	"pocketgrove/internal/world"
)

const (
	pageW     = 842
	pageH     = 595
	margin    = 40
	stripPad  = 24.0
	stripTop  = 130.0
	fontSize  = 9
	titleSize = 18
	labelSize = 7
)

// strip maps world coordinates onto the page.
type strip struct {
	x0, y0, scale float64
}

func newStrip(l world.Layout) strip {
	w := pageW - 2*margin - 2*stripPad
	return strip{x0: margin + stripPad, y0: stripTop, scale: w / l.Width}
}

func (s strip) point(x, y float64) (float64, float64) {
	return s.x0 + x*s.scale, s.y0 + y*s.scale
}

// Generate returns PDF bytes for the progress map of rec on layout l.
func Generate(l world.Layout, rec save.Record, title string) ([]byte, error) {
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("map size %vx%v", l.Width, l.Height)
	}
	s := newStrip(l)

	pdf := gofpdf.New("L", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	// Parchment
	pdf.SetFillColor(245, 235, 210)
	pdf.Rect(0, 0, pageW, pageH, "F")
	drawWavyBorder(pdf)

	pdf.SetDrawColor(80, 50, 30)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetLineWidth(1)

	pdf.SetFont("Helvetica", "B", titleSize)
	pdf.SetXY(margin+stripPad, margin+8)
	pdf.CellFormat(300, 18, "Pocket Grove", "", 0, "L", false, 0, "")
	if title != "" {
		pdf.SetFont("Helvetica", "", fontSize)
		pdf.SetXY(margin+stripPad, margin+30)
		pdf.CellFormat(300, 10, title, "", 0, "L", false, 0, "")
	}
	drawCompassRose(pdf, pageW-margin-60, margin+45)

	drawGround(pdf, s, l)
	for _, z := range l.Zones {
		drawBushZone(pdf, s, z.X, z.Y, z.W, z.H)
	}
	drawCheckpoint(pdf, s, l.Start.X, l.Start.Y)
	drawNPC(pdf, s, l.Hint, "GUIDE", drawSign)
	drawNPC(pdf, s, l.Duel, "DUELIST", drawSwords)
	drawNPC(pdf, s, l.Ring, "RING KEEPER", drawRing)

	// Dashed red trail from the checkpoint to the player
	px := math.Max(0, math.Min(l.Width, rec.X))
	py := math.Max(0, math.Min(l.Height, rec.Y))
	sx, sy := s.point(l.Start.X, l.Start.Y)
	ex, ey := s.point(px, py)
	pdf.SetDrawColor(180, 40, 40)
	pdf.SetLineWidth(2)
	pdf.SetDashPattern([]float64{10, 6}, 0)
	pdf.Line(sx, sy, ex, ey)
	pdf.SetDashPattern([]float64{}, 0)
	pdf.SetLineWidth(1)
	drawPlayer(pdf, ex, ey)

	drawLedger(pdf, l, rec)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawGround(pdf *gofpdf.Fpdf, s strip, l world.Layout) {
	x0, y0 := s.point(0, 0)
	x1, y1 := s.point(l.Width, l.Height)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetLineWidth(1.2)
	pdf.Rect(x0, y0, x1-x0, y1-y0, "D")
	// Hills along the horizon
	pdf.SetLineWidth(0.8)
	step := (x1 - x0) / 12
	for i := 0; i < 12; i++ {
		cx := x0 + step*(float64(i)+0.5)
		pdf.Arc(cx, y0+(y1-y0)*0.45, step*0.5, (y1-y0)*0.12, 0, 180, 360, "D")
	}
	pdf.SetLineWidth(1)
}

func drawBushZone(pdf *gofpdf.Fpdf, s strip, x, y, w, h float64) {
	zx, zy := s.point(x, y)
	zw, zh := w*s.scale, h*s.scale
	pdf.SetFillColor(190, 215, 150)
	pdf.SetDrawColor(60, 90, 40)
	pdf.Rect(zx, zy, zw, zh, "FD")
	// Bush tufts
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.8)
	for i := 0; i < 3; i++ {
		cx := zx + zw*(0.2+0.3*float64(i))
		pdf.Arc(cx, zy+zh*0.6, zw*0.14, zh*0.3, 0, 180, 360, "D")
	}
	pdf.SetLineWidth(1)
	pdf.SetFont("Helvetica", "B", labelSize)
	pdf.SetTextColor(40, 25, 15)
	pdf.SetXY(zx, zy+zh+2)
	pdf.CellFormat(zw, 8, "TALL GRASS", "", 0, "C", false, 0, "")
	pdf.SetTextColor(80, 50, 30)
	pdf.SetDrawColor(80, 50, 30)
}

func drawCheckpoint(pdf *gofpdf.Fpdf, s strip, x, y float64) {
	fx, fy := s.point(x, y)
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(fx, fy, fx, fy-18)
	pdf.SetFillColor(180, 40, 40)
	pdf.Polygon([]gofpdf.PointType{{X: fx, Y: fy - 18}, {X: fx + 10, Y: fy - 14}, {X: fx, Y: fy - 10}}, "FD")
	pdf.SetFont("Helvetica", "B", labelSize)
	pdf.SetTextColor(40, 25, 15)
	pdf.SetXY(fx-20, fy+2)
	pdf.CellFormat(40, 8, "START", "", 0, "C", false, 0, "")
	pdf.SetTextColor(80, 50, 30)
	pdf.SetDrawColor(80, 50, 30)
}

func drawNPC(pdf *gofpdf.Fpdf, s strip, at world.Spot, label string, icon func(*gofpdf.Fpdf, float64, float64, float64)) {
	x, y := s.point(at.X, at.Y)
	r := math.Max(6, at.R*s.scale)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1.2)
	icon(pdf, x, y-r, r)
	pdf.SetLineWidth(1)
	pdf.SetFont("Helvetica", "B", labelSize)
	pdf.SetTextColor(40, 25, 15)
	pdf.SetXY(x-30, y+2)
	pdf.CellFormat(60, 8, label, "", 0, "C", false, 0, "")
	pdf.SetTextColor(80, 50, 30)
	pdf.SetDrawColor(80, 50, 30)
}

func drawSign(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Rect(x-r*0.8, y-r*0.5, r*1.6, r*0.8, "D")
	pdf.Line(x, y+r*0.3, x, y+r)
}

func drawSwords(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.SetLineWidth(1.5)
	pdf.Line(x-r*0.7, y-r*0.7, x+r*0.7, y+r*0.7)
	pdf.Line(x-r*0.7, y+r*0.7, x+r*0.7, y-r*0.7)
}

func drawRing(pdf *gofpdf.Fpdf, x, y, r float64) {
	pdf.Circle(x, y, r*0.6, "D")
	pdf.SetFillColor(230, 190, 60)
	pdf.Circle(x, y-r*0.6, r*0.25, "FD")
}

func drawPlayer(pdf *gofpdf.Fpdf, x, y float64) {
	pdf.SetDrawColor(80, 50, 20)
	pdf.SetLineWidth(2)
	pdf.Circle(x, y, 7, "D")
	pdf.SetFillColor(180, 40, 40)
	pdf.Circle(x, y, 3, "F")
	pdf.SetLineWidth(1)
	pdf.SetFont("Helvetica", "I", labelSize)
	pdf.SetTextColor(40, 25, 15)
	pdf.SetXY(x-30, y-20)
	pdf.CellFormat(60, 8, "You are here", "", 0, "C", false, 0, "")
	pdf.SetTextColor(80, 50, 30)
	pdf.SetDrawColor(80, 50, 30)
}

// drawLedger writes the party below the strip.
func drawLedger(pdf *gofpdf.Fpdf, l world.Layout, rec save.Record) {
	p := rec.Player
	x := float64(margin) + stripPad
	y := stripTop + l.Height*newStrip(l).scale + 40

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(x, y)
	pdf.CellFormat(200, 14, "Travel Ledger", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", fontSize)
	lines := []string{
		fmt.Sprintf("Progress: %.0f%% of the grove", 100*l.Progress(rec.X)),
		fmt.Sprintf("Vitality: %d/%d", p.HP, p.MaxHP),
		fmt.Sprintf("Coins: %d   Potions: %d   Balls: %d", p.Coins, p.Items.Potion, p.Items.Ball),
	}
	if p.GotRing {
		lines = append(lines, "The Legendary Ring is yours.")
	} else {
		lines = append(lines, "The Legendary Ring awaits at the far end.")
	}
	for i, line := range lines {
		pdf.SetXY(x, y+20+float64(i)*13)
		pdf.CellFormat(300, 12, line, "", 0, "L", false, 0, "")
	}

	tx := x + 340
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(tx, y)
	pdf.CellFormat(200, 14, "Team", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize)
	if len(p.Team) == 0 {
		pdf.SetXY(tx, y+20)
		pdf.CellFormat(300, 12, "No creatures yet.", "", 0, "L", false, 0, "")
		return
	}
	for i, m := range p.Team {
		pdf.SetXY(tx, y+20+float64(i)*13)
		pdf.CellFormat(300, 12, fmt.Sprintf("%d. %s (%s)  HP %d/%d  ATK %d  DEF %d  SPD %d",
			i+1, m.Name, m.Element, m.HP, m.MaxHP, m.Attack, m.Defense, m.Speed), "", 0, "L", false, 0, "")
	}
}

// drawWavyBorder draws a tattered black border around the map.
func drawWavyBorder(pdf *gofpdf.Fpdf) {
	pts := wavyRectPoints(margin, margin, pageW-2*margin, pageH-2*margin, 16, 4)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(2)
	pdf.Polygon(pts, "D")
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
}

// wavyRectPoints returns polygon points for a rectangle with a sinusoidal
// wobble on each side, clockwise from the top-left corner.
func wavyRectPoints(x, y, w, h float64, steps int, amp float64) []gofpdf.PointType {
	pts := make([]gofpdf.PointType, 0, steps*4+1)
	edge := func(fx, fy func(t float64) float64, ax, ay float64, first int) {
		for i := first; i <= steps; i++ {
			t := float64(i) / float64(steps)
			pts = append(pts, gofpdf.PointType{
				X: fx(t) + amp*math.Sin(float64(i)*ax),
				Y: fy(t) + amp*math.Cos(float64(i)*ay),
			})
		}
	}
	edge(func(t float64) float64 { return x + t*w }, func(float64) float64 { return y }, 0.7, 0.5, 0)
	edge(func(float64) float64 { return x + w }, func(t float64) float64 { return y + t*h }, 0.6, 0.4, 1)
	edge(func(t float64) float64 { return x + w - t*w }, func(float64) float64 { return y + h }, 0.8, 0.3, 1)
	edge(func(float64) float64 { return x }, func(t float64) float64 { return y + h - t*h }, 0.5, 0.6, 1)
	return pts
}

// drawCompassRose draws an eight-point compass rose. Only E and W are
// labelled; the grove runs west to east.
func drawCompassRose(pdf *gofpdf.Fpdf, cx, cy float64) {
	const rad = 20.0
	pdf.SetDrawColor(101, 67, 33)
	pdf.SetLineWidth(1)
	pdf.Circle(cx, cy, rad, "D")
	for i := 0; i < 8; i++ {
		angle := float64(i)*math.Pi/4 - math.Pi/2
		if i%2 == 0 {
			pdf.SetDrawColor(180, 40, 40)
			pdf.SetLineWidth(1.5)
		} else {
			pdf.SetDrawColor(180, 140, 60)
			pdf.SetLineWidth(1)
		}
		pdf.Line(cx, cy, cx+rad*math.Cos(angle), cy+rad*math.Sin(angle))
	}
	pdf.SetLineWidth(1)
	pdf.SetDrawColor(80, 50, 30)
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(80, 50, 30)
	pdf.SetXY(cx+rad+4, cy-3)
	pdf.CellFormat(8, 6, "E", "", 0, "C", false, 0, "")
	pdf.SetXY(cx-rad-12, cy-3)
	pdf.CellFormat(8, 6, "W", "", 0, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", fontSize)
}
