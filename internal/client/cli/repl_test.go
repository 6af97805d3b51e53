package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExec struct {
	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) List(ctx context.Context) error { return f.record("list", nil) }
func (f *fakeExec) Page(ctx context.Context, args []string) error {
	return f.record("page", args)
}
func (f *fakeExec) Show(ctx context.Context, args []string) error {
	return f.record("show", args)
}
func (f *fakeExec) Add(ctx context.Context) error { return f.record("add", nil) }
func (f *fakeExec) Edit(ctx context.Context, args []string) error {
	return f.record("edit", args)
}
func (f *fakeExec) Delete(ctx context.Context, args []string) error {
	return f.record("delete", args)
}
func (f *fakeExec) Search(ctx context.Context, args []string) error {
	return f.record("search", args)
}
func (f *fakeExec) Recent(ctx context.Context, args []string) error {
	return f.record("recent", args)
}
func (f *fakeExec) Stats(ctx context.Context) error { return f.record("stats", nil) }
func (f *fakeExec) Seed(ctx context.Context, args []string) error {
	return f.record("seed", args)
}
func (f *fakeExec) Clear(ctx context.Context) error  { return f.record("clear", nil) }
func (f *fakeExec) Health(ctx context.Context) error { return f.record("health", nil) }

// capturePrints swaps printlnFn for a recorder for the duration of the test.
func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	capturePrints(t)

	input := strings.Join([]string{
		"help",
		"l",
		"list",
		"page 2",
		"show video_1",
		"add",
		"edit video_1",
		"rm video_1 video_2",
		"search cat videos",
		"recent 24h",
		"stats",
		"seed clips.json",
		"clear",
		"health",
		"",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(strings.NewReader(input)))

	require.Equal(t, []string{
		"list", "list", "page", "show", "add", "edit", "delete",
		"search", "recent", "stats", "seed", "clear", "health",
	}, exec.calls)
	assert.Equal(t, []string{"2"}, exec.args[2])
	assert.Equal(t, []string{"video_1", "video_2"}, exec.args[6])
	assert.Equal(t, []string{"cat", "videos"}, exec.args[7])
}

func TestRunREPL_LastLineWithoutNewline(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("stats\nhealth")))

	assert.Equal(t, []string{"stats", "health"}, exec.calls)
}

func TestRunREPL_ErrorsAreReported(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{err: errors.New("boom")}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("stats\nquit\n")))

	assert.Equal(t, []string{"stats"}, exec.calls)
	assert.Contains(t, *lines, "Error: boom")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("serch\nxyzzy\n")))

	assert.Empty(t, exec.calls)
	assert.Contains(t, *lines, `Unknown command: serch (did you mean "search"?)`)
	assert.Contains(t, *lines, "Unknown command: xyzzy")
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"lis", "list"},
		{"STATS", "stats"},
		{"delte", "delete"},
		{"helth", "health"},
		{"xyzzy", ""},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, suggest(tc.in))
		})
	}
}
