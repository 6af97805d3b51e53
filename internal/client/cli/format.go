package cli

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
)

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04")
}

func formatSeconds(s float64) string {
	return (time.Duration(s * float64(time.Second))).Round(100 * time.Millisecond).String()
}

// truncate shortens s to at most n runes, marking the cut with "…".
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func (a *App) printRecords(list []models.VideoRecord) {
	if len(list) == 0 {
		fmt.Fprintln(a.out, "No clips")
		return
	}

	width := outputWidth(100)
	for _, r := range list {
		head := fmt.Sprintf("%-28s %s %6s  ", r.ID, formatTime(r.CreatedAt), formatSeconds(r.Duration))
		fmt.Fprintln(a.out, head+truncate(r.Name, width-utf8.RuneCountInString(head)))
	}
}

func (a *App) printRecord(r models.VideoRecord) {
	var b strings.Builder
	fmt.Fprintf(&b, "ID:          %s\n", r.ID)
	fmt.Fprintf(&b, "Name:        %s\n", r.Name)
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", r.Description)
	}
	fmt.Fprintf(&b, "Duration:    %s\n", formatSeconds(r.Duration))
	if c := r.CropInfo; c != nil {
		fmt.Fprintf(&b, "Trim:        %gs - %gs\n", c.StartTime, c.EndTime)
	}
	fmt.Fprintf(&b, "Video:       %s\n", r.VideoLocation)
	if r.ThumbnailLocation != "" {
		fmt.Fprintf(&b, "Thumbnail:   %s\n", r.ThumbnailLocation)
	}
	fmt.Fprintf(&b, "Created:     %s\n", formatTime(r.CreatedAt))
	if r.UpdatedAt != nil {
		fmt.Fprintf(&b, "Updated:     %s\n", formatTime(*r.UpdatedAt))
	}
	fmt.Fprint(a.out, b.String())
}
