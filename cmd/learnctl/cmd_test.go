// AngelaMos | 2026
// cmd_test.go

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/storage"
	"github.com/carterperez-dev/learnhub/internal/store"
)

var fixedNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	t.Helper()

	kv, err := storage.NewFile(t.TempDir())
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &commandLine{
		st:  store.New(kv, "cli-test"),
		out: out,
		now: func() time.Time { return fixedNow },
	}, out
}

func withPassword(t *testing.T, pwd string) {
	t.Helper()
	prev := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = prev })
}

func seedCourse(t *testing.T, cli *commandLine) *store.Course {
	t.Helper()
	c, err := cli.st.SaveCourse(context.Background(), store.Course{
		Title:      "Go Basics",
		Difficulty: store.DifficultyBeginner,
		Modules: []store.Module{
			{Title: "Intro", Lessons: []store.Lesson{{Title: "Hello"}, {Title: "Types"}}},
		},
	})
	require.NoError(t, err)
	return c
}

func TestUsageErrors(t *testing.T) {
	cli, _ := setup(t)
	withPassword(t, "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command"},
		{name: "unknown command", args: []string{"lol"}},
		{name: "signup without email", args: []string{"signup"}},
		{name: "signup without password", args: []string{"signup", "-email", "a@b.cd"}},
		{name: "login without email", args: []string{"login"}},
		{name: "enroll without course", args: []string{"enroll"}},
		{name: "note without text", args: []string{"note", "-course", "c", "-lesson", "l"}},
		{name: "complete without lesson", args: []string{"complete", "-course", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, cli.run(tt.args), errHelp)
		})
	}
}

func TestSessionCommands(t *testing.T) {
	cli, out := setup(t)
	withPassword(t, "password123")

	require.NoError(t, cli.run([]string{"signup", "-email", "ada@example.com", "-name", "Ada"}))
	assert.Contains(t, out.String(), "Welcome, Ada! Signed up as student.")

	out.Reset()
	require.NoError(t, cli.run([]string{"whoami"}))
	assert.Contains(t, out.String(), "ada@example.com")
	assert.Contains(t, out.String(), "free (active)")

	require.NoError(t, cli.run([]string{"logout"}))
	assert.ErrorIs(t, cli.run([]string{"whoami"}), store.ErrNoSession)

	withPassword(t, "wrong")
	assert.ErrorIs(t, cli.run([]string{"login", "-email", "ada@example.com"}), core.ErrUnauthorized)

	withPassword(t, "password123")
	out.Reset()
	require.NoError(t, cli.run([]string{"login", "-email", "ADA@example.com"}))
	assert.Contains(t, out.String(), "Logged in as Ada.")
}

func TestStudentFlow(t *testing.T) {
	cli, out := setup(t)
	withPassword(t, "password123")
	c := seedCourse(t, cli)
	lesson := c.Modules[0].Lessons[1]

	require.NoError(t, cli.run([]string{"signup", "-email", "sam@example.com", "-name", "Sam"}))

	out.Reset()
	require.NoError(t, cli.run([]string{"courses"}))
	assert.Contains(t, out.String(), "Go Basics")

	assert.ErrorIs(t, cli.run([]string{"certify", "-course", c.ID}), core.ErrForbidden)

	require.NoError(t, cli.run([]string{"enroll", "-course", c.ID}))
	require.NoError(t, cli.run([]string{
		"note", "-course", c.ID, "-lesson", lesson.ID, "-at", "1:05", "-text", "zero values",
	}))

	out.Reset()
	require.NoError(t, cli.run([]string{"cheatsheet", "-course", c.ID}))
	assert.Equal(t, "Go Basics - Cheat Sheet\n\n[01:05] Types: zero values\n", out.String())

	assert.ErrorIs(t, cli.run([]string{"certify", "-course", c.ID}), core.ErrForbidden)

	for _, l := range c.Modules[0].Lessons {
		require.NoError(t, cli.run([]string{"complete", "-course", c.ID, "-lesson", l.ID}))
	}

	out.Reset()
	require.NoError(t, cli.run([]string{"certify", "-course", c.ID}))
	assert.Contains(t, out.String(), "Go Basics, issued 2026-")
}

func TestPauseToggle(t *testing.T) {
	cli, out := setup(t)
	withPassword(t, "password123")
	require.NoError(t, cli.run([]string{"signup", "-email", "p@example.com"}))

	out.Reset()
	require.NoError(t, cli.run([]string{"pause"}))
	assert.Contains(t, out.String(), "Subscription paused until 2026-05-18.")

	out.Reset()
	require.NoError(t, cli.run([]string{"pause"}))
	assert.Contains(t, out.String(), "Subscription resumed.")
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "90", want: 90},
		{in: "1:30", want: 90},
		{in: "00:00", want: 0},
		{in: "1:75", wantErr: true},
		{in: "-3", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimestamp(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
