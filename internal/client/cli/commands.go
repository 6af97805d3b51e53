package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/clipshelf/internal/client/models"
	"github.com/dmitrijs2005/clipshelf/internal/client/services"
)

var errUsage = errors.New("wrong arguments")

func usage(format string) error {
	return fmt.Errorf("%w, usage: %s", errUsage, format)
}

// List prints the current search results, or the whole library when no
// search is active.
func (a *App) List(ctx context.Context) error {
	v := a.search.View()
	if v.Active {
		fmt.Fprintf(a.out, "Search %q:\n", v.Query)
	}
	a.printRecords(v.Display)
	if v.Stats != nil {
		fmt.Fprintf(a.out, "%d found, %s total\n", v.Stats.Total, formatSeconds(v.Stats.TotalDuration))
	}
	if v.Local {
		fmt.Fprintln(a.out, "(database search failed, results filtered from memory)")
	}
	return nil
}

func (a *App) Page(ctx context.Context, args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return usage("page <n>")
		}
		n = v
	}

	p, err := a.library.Page(ctx, n)
	if err != nil {
		return err
	}
	a.printRecords(p.Records)
	more := ""
	if p.HasMore {
		more = fmt.Sprintf(", next: page %d", n+1)
	}
	fmt.Fprintf(a.out, "page %d, %d clips in total%s\n", n, p.Total, more)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("show <id>")
	}
	r, ok := a.store.FindByID(args[0])
	if !ok {
		return fmt.Errorf("no clip with id %s", args[0])
	}
	a.printRecord(r)
	return nil
}

// Add asks for a source video, a trim window and metadata, then captures the clip.
func (a *App) Add(ctx context.Context) error {
	source, err := GetSimpleText(a.reader, "Source video file", a.prompts)
	if err != nil {
		return err
	}
	start, err := GetFloat(a.reader, "Start time, seconds", 0, a.prompts)
	if err != nil {
		return err
	}
	end, err := GetFloat(a.reader, "End time, seconds", start+models.ClipLength, a.prompts)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Name", a.prompts)
	if err != nil {
		return err
	}
	description, err := GetMultiline(a.reader, "Description", a.prompts)
	if err != nil {
		return err
	}

	r, err := a.library.Capture(ctx, services.CaptureRequest{
		Source:   source,
		Window:   models.CropWindow{StartTime: start, EndTime: end, Duration: end - start},
		Metadata: models.Metadata{Name: name, Description: description},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %s\n", r.ID)
	return nil
}

// Edit changes the name and description of a clip. Empty answers keep the
// current values.
func (a *App) Edit(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("edit <id>")
	}
	r, ok := a.store.FindByID(args[0])
	if !ok {
		return fmt.Errorf("no clip with id %s", args[0])
	}

	name, err := GetSimpleText(a.reader, fmt.Sprintf("Name [%s]", r.Name), a.prompts)
	if err != nil {
		return err
	}
	description, err := GetSimpleText(a.reader, fmt.Sprintf("Description [%s]", r.Description), a.prompts)
	if err != nil {
		return err
	}

	var p models.Patch
	if name != "" {
		p.Name = models.Ptr(name)
	}
	if description != "" {
		p.Description = models.Ptr(description)
	}
	if p.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing changed")
		return nil
	}

	if err := a.store.Update(ctx, r.ID, p); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Updated")
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("delete <id...>")
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Delete %d clip(s)?", len(args)), a.prompts)
	if err != nil || !ok {
		return err
	}
	if err := a.library.Delete(ctx, args...); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Deleted")
	return nil
}

// Search runs a query right away; without arguments it clears the search.
func (a *App) Search(ctx context.Context, args []string) error {
	q := strings.Join(args, " ")
	if q == "" {
		a.search.Clear()
		fmt.Fprintln(a.out, "Search cleared")
		return nil
	}
	a.search.SetQuery(q)
	a.search.Flush()
	return a.List(ctx)
}

func (a *App) Recent(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("recent <duration>")
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return usage("recent <duration>, e.g. recent 24h")
	}
	list, err := a.library.Since(ctx, d)
	if err != nil {
		return err
	}
	a.printRecords(list)
	return nil
}

func (a *App) Stats(ctx context.Context) error {
	s, err := a.library.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Clips:    %d\n", s.Count)
	fmt.Fprintf(a.out, "Duration: %s\n", formatSeconds(s.TotalDuration))
	if s.OldestCreatedAt != nil {
		fmt.Fprintf(a.out, "Oldest:   %s\n", formatTime(*s.OldestCreatedAt))
		fmt.Fprintf(a.out, "Newest:   %s\n", formatTime(*s.NewestCreatedAt))
	}
	return nil
}

func (a *App) Seed(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("seed <file.json>")
	}
	n, err := a.library.Seed(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported %d clips\n", n)
	return nil
}

// Clear deletes every record. Clip files are left on disk.
func (a *App) Clear(ctx context.Context) error {
	ok, err := Confirm(a.reader, "Delete ALL clips from the library?", a.prompts)
	if err != nil || !ok {
		return err
	}
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	a.search.Clear()
	fmt.Fprintln(a.out, "Library cleared")
	return nil
}

func (a *App) Health(ctx context.Context) error {
	if !a.library.Healthy(ctx) {
		return errors.New("database is not responding")
	}
	fmt.Fprintln(a.out, "OK")
	return nil
}
