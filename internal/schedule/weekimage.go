package schedule

import (
	"bytes"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"tutorbook/internal/model"
)

const (
	imageWidth      = 1120
	imageHeight     = 680
	headerHeight    = 60
	leftLabelsWidth = 70
	dayPaddingX     = 4
	totalWeekDays   = 7
	blockRadius     = 5.0
)

var (
	boardBgColor   = color.RGBA{245, 246, 248, 255}
	boardTextColor = color.RGBA{80, 85, 90, 220}
	hourLabelColor = color.RGBA{110, 115, 120, 200}
	hourLineColor  = color.NRGBA{150, 150, 150, 120}
	evenDayColor   = color.NRGBA{240, 240, 240, 255}
	oddDayColor    = color.NRGBA{224, 226, 230, 255}
	todayColor     = color.NRGBA{255, 224, 178, 255}

	openBlockColor      = color.RGBA{133, 193, 85, 220}
	fullBlockColor      = color.RGBA{255, 182, 193, 255}
	cancelledBlockColor = color.RGBA{158, 158, 158, 200}
	completedBlockColor = color.RGBA{139, 180, 235, 230}
	blockTextColor      = color.RGBA{20, 24, 28, 230}
)

type weekBounds struct {
	start time.Time
	end   time.Time
}

// WeekBoard renders the sessions of one calendar week (the week containing
// now, Monday first) as a PNG grid. Rows cover the allowed-hours window so
// every valid session fits on the board.
type WeekBoard struct {
	Hours Hours
}

// Render draws sessions onto the weekly grid and encodes it as PNG.
func (b WeekBoard) Render(sessions []*model.Session, now time.Time) ([]byte, error) {
	loc := b.Hours.Location
	week := weekOf(now.In(loc))
	byDay := groupByDay(sessions, week, loc)

	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(boardBgColor)
	dc.Clear()

	totalHours := b.Hours.CloseHour - b.Hours.OpenHour
	dayWidth := (imageWidth - leftLabelsWidth) / totalWeekDays
	gridHeight := imageHeight - headerHeight
	cellHeight := float64(gridHeight) / float64(totalHours)

	b.drawHeader(dc, week)
	b.drawHourLabels(dc, totalHours, cellHeight)

	day := week.start
	today := now.In(loc)
	for i := 0; i < totalWeekDays; i++ {
		x := float64(leftLabelsWidth + i*dayWidth)
		b.drawDayColumn(dc, day, today, x, dayWidth, gridHeight, i)
		b.drawHourLines(dc, x, dayWidth, totalHours, cellHeight)
		for _, s := range byDay[day.Format("2006-01-02")] {
			b.drawSessionBlock(dc, s, x, dayWidth, cellHeight, loc)
		}
		day = day.AddDate(0, 0, 1)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func weekOf(t time.Time) weekBounds {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	sinceMonday := int(day.Weekday()) - 1
	if day.Weekday() == time.Sunday {
		sinceMonday = 6
	}
	start := day.AddDate(0, 0, -sinceMonday)
	return weekBounds{start: start, end: start.AddDate(0, 0, 6)}
}

func groupByDay(sessions []*model.Session, week weekBounds, loc *time.Location) map[string][]*model.Session {
	byDay := make(map[string][]*model.Session)
	for _, s := range sessions {
		start := s.StartAt.In(loc)
		if start.Before(week.start) || !start.Before(week.end.AddDate(0, 0, 1)) {
			continue
		}
		key := start.Format("2006-01-02")
		byDay[key] = append(byDay[key], s)
	}
	return byDay
}

func (b WeekBoard) drawHeader(dc *gg.Context, week weekBounds) {
	title := week.start.Format("02 Jan") + " - " + week.end.Format("02 Jan 2006")
	dc.SetColor(boardTextColor)
	dc.DrawStringAnchored(title, imageWidth/2, headerHeight/3, 0.5, 0.5)
}

func (b WeekBoard) drawHourLabels(dc *gg.Context, totalHours int, cellHeight float64) {
	dc.SetColor(hourLabelColor)
	for h := 0; h <= totalHours; h++ {
		y := float64(headerHeight) + float64(h)*cellHeight
		label := time.Date(0, 1, 1, b.Hours.OpenHour+h, 0, 0, 0, time.UTC).Format("15:04")
		dc.DrawStringAnchored(label, leftLabelsWidth-8, y, 1, 0.5)
	}
}

func (b WeekBoard) drawDayColumn(dc *gg.Context, day, today time.Time, x float64, dayWidth, gridHeight, index int) {
	switch {
	case sameDay(day, today):
		dc.SetColor(todayColor)
	case index%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, headerHeight, float64(dayWidth), float64(gridHeight))
	dc.Fill()

	dc.SetColor(boardTextColor)
	label := day.Format("Mon 02.01")
	dc.DrawStringAnchored(label, x+float64(dayWidth)/2, headerHeight-14, 0.5, 0.5)
}

func (b WeekBoard) drawHourLines(dc *gg.Context, x float64, dayWidth, totalHours int, cellHeight float64) {
	dc.SetColor(hourLineColor)
	for h := 0; h <= totalHours; h++ {
		y := float64(headerHeight) + float64(h)*cellHeight
		dc.DrawLine(x, y, x+float64(dayWidth), y)
		dc.Stroke()
	}
}

func (b WeekBoard) drawSessionBlock(dc *gg.Context, s *model.Session, x float64, dayWidth int, cellHeight float64, loc *time.Location) {
	start := s.StartAt.In(loc)
	end := s.EndAt.In(loc)

	startOffset := float64(start.Hour()-b.Hours.OpenHour) + float64(start.Minute())/60
	endOffset := float64(end.Hour()-b.Hours.OpenHour) + float64(end.Minute())/60
	if startOffset < 0 {
		startOffset = 0
	}

	y := float64(headerHeight) + startOffset*cellHeight
	h := (endOffset - startOffset) * cellHeight
	if h < 10 {
		h = 10
	}

	dc.SetColor(blockColor(s.Status))
	dc.DrawRoundedRectangle(x+dayPaddingX, y+1, float64(dayWidth)-2*dayPaddingX, h-2, blockRadius)
	dc.Fill()

	dc.SetColor(blockTextColor)
	label := start.Format("15:04") + "-" + end.Format("15:04")
	dc.DrawStringAnchored(label, x+float64(dayWidth)/2, y+h/2-6, 0.5, 0.5)
	dc.DrawStringAnchored(trimTitle(s.Title), x+float64(dayWidth)/2, y+h/2+8, 0.5, 0.5)
}

// trimTitle shortens long titles so they fit in a day column. Counts runes,
// not bytes, so multi-byte titles are never split mid-character.
func trimTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 18 {
		return title
	}
	return string(runes[:15]) + "..."
}

func blockColor(status model.SessionStatus) color.Color {
	switch status {
	case model.SessionStatusOpen:
		return openBlockColor
	case model.SessionStatusFull:
		return fullBlockColor
	case model.SessionStatusCancelled:
		return cancelledBlockColor
	case model.SessionStatusCompleted:
		return completedBlockColor
	default:
		return oddDayColor
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
