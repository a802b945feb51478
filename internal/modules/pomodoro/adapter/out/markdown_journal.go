package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"pomo/internal/modules/pomodoro/domain"
	pomodoroout "pomo/internal/modules/pomodoro/port/out"
	"pomo/internal/platform/markdown"
)

type MarkdownJournal struct {
	dir string
}

func NewMarkdownJournal(dir string) pomodoroout.JournalWriter {
	return &MarkdownJournal{dir: dir}
}

const notesHeading = "Notes"

// Write renders one note per day, replacing any earlier export of that day.
// The "## Notes" section and frontmatter keys the journal does not own are
// carried over from the earlier export.
func (j *MarkdownJournal) Write(_ context.Context, day time.Time, sessions []domain.Session) (string, error) {
	dir := filepath.Join(j.dir, day.Format("2006"), day.Format("01"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	path := filepath.Join(dir, day.Format("02")+".md")

	previous, err := readNote(path)
	if err != nil {
		return "", err
	}

	focused, workCount := domain.FocusTotal(sessions)
	meta := previous.Meta
	meta["schema_version"] = domain.SchemaVersion
	meta["date"] = day.Format("2006-01-02")
	meta["work_sessions"] = workCount
	meta["focused_minutes"] = int(focused / time.Minute)

	var body strings.Builder
	fmt.Fprintf(&body, "# Focus log %s\n\n", day.Format("2006-01-02"))
	fmt.Fprintf(&body, "- Focused: %s over %d work sessions\n\n", domain.FormatSpan(focused), workCount)
	body.WriteString("## Sessions\n\n")
	if len(sessions) == 0 {
		body.WriteString("_No sessions._\n")
	}
	for _, s := range sessions {
		fmt.Fprintf(&body, "- %s %s (%s)\n", s.CompletedAt.Format("15:04"), s.Mode.Label(), domain.FormatSpan(s.Duration))
	}
	fmt.Fprintf(&body, "\n## %s\n\n", notesHeading)
	if notes, ok := previous.Section(notesHeading); ok && notes != "" {
		body.WriteString(notes + "\n")
	}

	rendered, err := markdown.Note{Meta: meta, Body: body.String()}.Render()
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	return path, nil
}

func readNote(path string) (markdown.Note, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return markdown.Note{Meta: map[string]any{}}, nil
	}
	if err != nil {
		return markdown.Note{}, fmt.Errorf("read journal note: %w", err)
	}
	note, err := markdown.ParseNote(string(raw))
	if err != nil {
		return markdown.Note{}, fmt.Errorf("journal note %s: %w", path, err)
	}
	return note, nil
}
