// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// shell.go - The document shell opened by "login".
//
// Each line is one command. Permission checks happen in the workspace; the
// shell only parses arguments and renders results.

package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/docvault/internal/documents"
	"github.com/jeranaias/docvault/internal/files"
	"github.com/jeranaias/docvault/internal/logging"
	"github.com/jeranaias/docvault/internal/security"
	"github.com/jeranaias/docvault/internal/storage"
	"github.com/jeranaias/docvault/internal/util"
	"github.com/jeranaias/docvault/internal/workspace"
)

const shellHelp = `Commands:
  ls                              List documents
  cat <name>                      Print a document
  new <name> [text|draw|sheet]    Create a document (opens it if it exists)
  write <name> <text...>          Replace a text document
  append <name> <text...>         Append a line to a text document
  set <sheet> <cell> [value...]   Set a cell, e.g. set budget.sheet B3 42
  set <sheet> <row> <col> [value...]
                                  Same, with 1-based row and column numbers
  addrow <sheet>                  Append an empty row
  addcol <sheet>                  Append an empty column
  stroke <draw> x,y x,y ... [--tool pencil|eraser] [--color #RRGGBB] [--size N]
                                  Add a stroke to a drawing
  clear <draw>                    Remove every stroke from a drawing
  rm <name>                       Delete a document
  whoami                          Show the session and its permissions
  watch on|off                    Report changes made outside this session
  help                            Show this help
  exit                            Log out
`

const (
	minNameWidth = 12
	maxNameWidth = 48
	cellWidth    = 10

	// kind, size and modified columns of ls, with their separators
	listFixedWidth = 1 + 12 + 1 + 8 + 2 + 19
	// row number gutter of a rendered sheet
	sheetGutter = 4

	// ownChangeWindow hides watcher events caused by this shell's own writes.
	ownChangeWindow = time.Second
)

// =============================================================================
// SHELL
// =============================================================================

// Shell executes document commands for one workspace.
type Shell struct {
	ws     *workspace.Workspace
	files  *files.Manager
	logger *slog.Logger

	mu    sync.Mutex
	out   io.Writer
	width int

	watcher   *files.Watcher
	watchDone chan struct{}
	touched   map[string]time.Time
}

// NewShell returns a shell writing to out. A nil logger discards.
func NewShell(ws *workspace.Workspace, fm *files.Manager, out io.Writer, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Shell{
		ws:      ws,
		files:   fm,
		logger:  logger,
		out:     out,
		width:   outputWidth(out),
		touched: make(map[string]time.Time),
	}
}

// Run reads commands from in until exit, end of input or Ctrl+C. Command
// errors are printed and the loop continues.
func (s *Shell) Run(in lineSource) error {
	defer s.Close()

	s.printf("%s\n", DimStyle.Render("Type help for commands."))
	for {
		line, err := in.Prompt(PromptStyle.Render(s.ws.Session().Username+"> "))
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				s.printf("\n")
				return nil
			}
			return err
		}

		exit, err := s.Execute(line)
		if err != nil {
			s.printf("%s %s\n", ErrorStyle.Render("Error:"), Describe(err))
		}
		if exit {
			s.printf("%s\n", DimStyle.Render("Logged out."))
			return nil
		}
	}
}

// Execute runs one command line. exit is true for exit and quit.
func (s *Shell) Execute(line string) (exit bool, err error) {
	cmd, rest := cutWord(line)
	if cmd != "" {
		s.logger.Debug("shell command", "cmd", cmd)
	}
	switch strings.ToLower(cmd) {
	case "":
		return false, nil
	case "ls", "list":
		s.list()
		return false, nil
	case "cat", "open":
		return false, s.cat(rest)
	case "new", "create":
		return false, s.create(rest)
	case "write":
		return false, s.write(rest, false)
	case "append":
		return false, s.write(rest, true)
	case "set":
		return false, s.setCell(rest)
	case "addrow":
		return false, s.grow(rest, true)
	case "addcol":
		return false, s.grow(rest, false)
	case "stroke":
		return false, s.stroke(rest)
	case "clear":
		return false, s.clear(rest)
	case "rm", "delete":
		return false, s.remove(rest)
	case "whoami":
		s.whoami()
		return false, nil
	case "watch":
		return false, s.watch(rest)
	case "help", "?":
		s.printf("%s", shellHelp)
		return false, nil
	case "exit", "quit", "logout":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (type help)", cmd)
	}
}

// Close stops the watcher if it is running.
func (s *Shell) Close() error {
	return s.stopWatch()
}

// =============================================================================
// COMMANDS
// =============================================================================

func (s *Shell) list() {
	entries := s.ws.List()
	if len(entries) == 0 {
		s.printf("%s\n", DimStyle.Render("No documents."))
		return
	}

	nameWidth := min(max(s.width-listFixedWidth, minNameWidth), maxNameWidth)
	s.printf("%s\n", SectionStyle.Render(fmt.Sprintf("%s %-12s %8s  %s",
		util.PadRight("Name", nameWidth), "Kind", "Size", "Modified")))
	for _, e := range entries {
		name := util.PadRight(util.TruncateWidth(e.Name, nameWidth), nameWidth)
		s.printf("%s %-12s %8s  %s\n",
			name,
			e.Kind.Label(),
			util.FormatSize(e.Size),
			DimStyle.Render(storage.NewTimestamp(e.ModTime).String()))
	}
	s.printf("%s\n", DimStyle.Render(fmt.Sprintf("%d document(s)", len(entries))))
}

func (s *Shell) cat(rest string) error {
	name, _ := cutWord(rest)
	if name == "" {
		return errors.New("usage: cat <name>")
	}
	content, err := s.ws.Open(name)
	if err != nil {
		return err
	}

	switch documents.KindOf(name) {
	case documents.KindSpreadsheet:
		s.printf("%s", renderSheet(documents.ParseSpreadsheet(content), s.width))
	case documents.KindDrawing:
		s.printf("%s", renderDrawing(documents.ParseDrawing(content)))
	default:
		s.printf("%s", content)
		if content != "" && !strings.HasSuffix(content, "\n") {
			s.printf("\n")
		}
	}
	return nil
}

func (s *Shell) create(rest string) error {
	name, rest := cutWord(rest)
	if name == "" {
		return errors.New("usage: new <name> [text|draw|sheet]")
	}
	kindArg, _ := cutWord(rest)
	kind, err := documents.ParseKind(kindArg)
	if err != nil {
		return err
	}

	final, err := s.ws.Create(name, kind)
	if errors.Is(err, files.ErrAlreadyExists) {
		s.printf("%s\n", DimStyle.Render(final+" already exists, opening it"))
		return s.cat(final)
	}
	if err != nil {
		return err
	}
	s.touch(final)
	s.printf("%s %s (%s)\n", SuccessStyle.Render("Created"), final, kind.Label())
	return nil
}

func (s *Shell) write(rest string, appendLine bool) error {
	name, text := cutWord(rest)
	if name == "" {
		if appendLine {
			return errors.New("usage: append <name> <text...>")
		}
		return errors.New("usage: write <name> <text...>")
	}
	switch documents.KindOf(name) {
	case documents.KindSpreadsheet:
		return fmt.Errorf("%s is a spreadsheet, use set", name)
	case documents.KindDrawing:
		return fmt.Errorf("%s is a drawing, use stroke", name)
	}

	content := text
	if appendLine {
		current, err := s.ws.Open(name)
		if err != nil {
			return err
		}
		if current != "" && !strings.HasSuffix(current, "\n") {
			current += "\n"
		}
		content = current + text
	}

	if err := s.ws.Save(name, content); err != nil {
		return err
	}
	s.touch(name)
	s.printf("%s %s\n", SuccessStyle.Render("Saved"), name)
	return nil
}

func (s *Shell) setCell(rest string) error {
	const usage = "usage: set <sheet> <cell> [value...] or set <sheet> <row> <col> [value...]"

	name, rest := cutWord(rest)
	ref, rest := cutWord(rest)
	if name == "" || ref == "" {
		return errors.New(usage)
	}

	row, col, err := documents.ParseCellRef(ref)
	value := rest
	if err != nil {
		colArg, tail := cutWord(rest)
		r, rowErr := strconv.Atoi(ref)
		c, colErr := strconv.Atoi(colArg)
		if rowErr != nil || colErr != nil || r < 1 || c < 1 {
			return errors.New(usage)
		}
		row, col, value = r-1, c-1, tail
	}

	if err := s.ws.SetCell(name, row, col, value); err != nil {
		return err
	}
	s.touch(name)
	cell := documents.ColumnLabel(col) + strconv.Itoa(row+1)
	if value == "" {
		s.printf("%s %s!%s\n", SuccessStyle.Render("Cleared"), name, cell)
	} else {
		s.printf("%s %s!%s = %s\n", SuccessStyle.Render("Set"), name, cell, value)
	}
	return nil
}

func (s *Shell) grow(rest string, row bool) error {
	name, _ := cutWord(rest)
	if name == "" {
		if row {
			return errors.New("usage: addrow <sheet>")
		}
		return errors.New("usage: addcol <sheet>")
	}

	what, add := "row", s.ws.AddRow
	if !row {
		what, add = "column", s.ws.AddColumn
	}
	if err := add(name); err != nil {
		return err
	}
	s.touch(name)
	s.printf("%s a %s to %s\n", SuccessStyle.Render("Added"), what, name)
	return nil
}

func (s *Shell) clear(rest string) error {
	name, _ := cutWord(rest)
	if name == "" {
		return errors.New("usage: clear <draw>")
	}
	if err := s.ws.ClearDrawing(name); err != nil {
		return err
	}
	s.touch(name)
	s.printf("%s %s\n", SuccessStyle.Render("Cleared"), name)
	return nil
}

func (s *Shell) stroke(rest string) error {
	const usage = "usage: stroke <draw> x,y x,y ... [--tool pencil|eraser] [--color #RRGGBB] [--size N]"

	p := NewArgParser(strings.Fields(rest))
	name := p.Positional(0)
	if name == "" {
		return errors.New(usage)
	}

	size := 0
	if v := p.Flag("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid size %q", v)
		}
		size = n
	}
	tool := strings.ToLower(p.FlagOrDefault("tool", documents.ToolPencil))
	if tool != documents.ToolPencil && tool != documents.ToolEraser {
		return fmt.Errorf("unknown tool %q (use pencil or eraser)", tool)
	}
	color := p.Flag("color")

	coords := p.PositionalFrom(1)
	points := make([]documents.Point, 0, len(coords))
	for _, c := range coords {
		xs, ys, ok := strings.Cut(c, ",")
		x, errX := strconv.Atoi(xs)
		y, errY := strconv.Atoi(ys)
		if !ok || errX != nil || errY != nil {
			return fmt.Errorf("invalid point %q, want x,y", c)
		}
		points = append(points, documents.NewPoint(x, y, tool, color, size))
	}

	if err := s.ws.AddStroke(name, points); err != nil {
		return err
	}
	s.touch(name)
	s.printf("%s %d-point stroke to %s\n", SuccessStyle.Render("Added"), len(points), name)
	return nil
}

func (s *Shell) remove(rest string) error {
	name, _ := cutWord(rest)
	if name == "" {
		return errors.New("usage: rm <name>")
	}
	if err := s.ws.Delete(name); err != nil {
		return err
	}
	s.touch(name)
	s.printf("%s %s\n", SuccessStyle.Render("Deleted"), name)
	return nil
}

func (s *Shell) whoami() {
	session := s.ws.Session()
	perms := make([]string, 0, 3)
	for _, action := range security.Actions(session.Permissions) {
		perms = append(perms, string(action))
	}
	permList := strings.Join(perms, ", ")
	if permList == "" {
		permList = "none"
	}

	s.printf("%s\n", RenderField("User:", session.Username))
	s.printf("%s\n", RenderField("Session:", session.ID))
	s.printf("%s\n", RenderField("Logged in:", storage.NewTimestamp(session.StartedAt).String()))
	s.printf("%s\n", RenderField("Login count:", strconv.Itoa(session.LoginCount)))
	s.printf("%s\n", RenderField("Permissions:", permList))
}

// =============================================================================
// WATCH
// =============================================================================

func (s *Shell) watch(rest string) error {
	arg, _ := cutWord(rest)
	switch strings.ToLower(arg) {
	case "on":
		return s.startWatch()
	case "off":
		if err := s.stopWatch(); err != nil {
			return err
		}
		s.printf("%s\n", DimStyle.Render("Watching stopped."))
		return nil
	case "":
		state := "off"
		if s.watching() {
			state = "on"
		}
		s.printf("watch is %s\n", state)
		return nil
	default:
		return errors.New("usage: watch on|off")
	}
}

func (s *Shell) watching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watcher != nil
}

func (s *Shell) startWatch() error {
	if s.watching() {
		return nil
	}
	w, err := files.NewWatcher(s.files, files.DefaultDebounce)
	if err != nil {
		return err
	}
	done := make(chan struct{})

	s.mu.Lock()
	s.watcher = w
	s.watchDone = done
	s.mu.Unlock()

	go func() {
		defer close(done)
		for ev := range w.Events() {
			if s.ownChange(ev.Name) {
				continue
			}
			s.printf("\n%s %s %s\n", WarningStyle.Render("[watch]"), ev.Name, ev.Kind)
		}
	}()

	s.logger.Debug("watch started", "dir", s.files.Dir())
	s.printf("%s\n", DimStyle.Render("Watching "+s.files.Dir()+" for changes."))
	return nil
}

func (s *Shell) stopWatch() error {
	s.mu.Lock()
	w, done := s.watcher, s.watchDone
	s.watcher, s.watchDone = nil, nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	err := w.Close()
	<-done
	return err
}

// touch records a change made by this shell.
func (s *Shell) touch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched[name] = time.Now()
}

func (s *Shell) ownChange(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.touched[name]
	return ok && time.Since(at) < ownChangeWindow+files.DefaultDebounce
}

// =============================================================================
// RENDERING
// =============================================================================

func (s *Shell) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

// cutWord splits off the first whitespace-separated word.
func cutWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// renderSheet draws the grid with column letters and 1-based row numbers.
// Columns that do not fit in width are left out and counted below the grid.
func renderSheet(sheet *documents.Spreadsheet, width int) string {
	cols := min(sheet.Columns, max((width-sheetGutter)/(cellWidth+1), 1))

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", sheetGutter))
	for c := 0; c < cols; c++ {
		b.WriteString(" " + util.PadRight(documents.ColumnLabel(c), cellWidth))
	}
	b.WriteString("\n")
	for r := 0; r < sheet.Rows; r++ {
		fmt.Fprintf(&b, "%4d", r+1)
		for c := 0; c < cols; c++ {
			cell := util.TruncateWidth(sheet.Get(r, c), cellWidth)
			b.WriteString(" " + util.PadRight(cell, cellWidth))
		}
		b.WriteString("\n")
	}
	if hidden := sheet.Columns - cols; hidden > 0 {
		fmt.Fprintf(&b, "(%d more column(s) past %s)\n", hidden, documents.ColumnLabel(cols-1))
	}
	return b.String()
}

// renderDrawing summarises a drawing, one line per stroke.
func renderDrawing(d *documents.Drawing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Drawing: %d stroke(s), %d point(s)\n", len(d.Strokes), d.PointCount())
	for i, stroke := range d.Strokes {
		if len(stroke) == 0 {
			continue
		}
		first, last := stroke[0], stroke[len(stroke)-1]
		fmt.Fprintf(&b, "  %d. %s %s size %d, (%d,%d) to (%d,%d), %d points\n",
			i+1, first.Tool, first.Color, first.Size, first.X, first.Y, last.X, last.Y, len(stroke))
	}
	return b.String()
}
