// Package terminal renders the game on a line-oriented terminal and turns
// typed commands into controller actions.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gokatarajesh/picture-riddle/internal/catalog"
	"github.com/gokatarajesh/picture-riddle/internal/game"
	"github.com/gokatarajesh/picture-riddle/internal/stats"
)

// countdownWarning is the remaining time from which ticks are printed.
const countdownWarning = 5

// Player drives one controller from a reader. Output from controller events
// and from command handling share one writer, guarded by mu.
type Player struct {
	ctrl    *game.Controller
	catalog *catalog.Catalog
	in      *bufio.Reader

	mu  sync.Mutex
	out io.Writer
}

func NewPlayer(ctrl *game.Controller, c *catalog.Catalog, in io.Reader, out io.Writer) *Player {
	return &Player{ctrl: ctrl, catalog: c, in: bufio.NewReader(in), out: out}
}

// Run reads commands until quit, EOF or ctx is done.
func (p *Player) Run(ctx context.Context) error {
	unsubscribe := p.ctrl.Subscribe(p.onEvent)
	defer unsubscribe()

	p.renderStart(p.ctrl.Snapshot())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errs := make(chan error, 1)
	go p.readLines(ctx, lines, errs)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errs:
					if err == io.EOF {
						return nil
					}
					return err
				default:
					return ctx.Err()
				}
			}
			if quit := p.handle(line); quit {
				p.printf("👋 Bye!\n")
				return nil
			}
		}
	}
}

// readLines feeds lines until the reader fails or ctx is done. A read already
// in progress is abandoned once ctx is done.
func (p *Player) readLines(ctx context.Context, lines chan<- string, errs chan<- error) {
	defer close(lines)
	for {
		line, err := p.in.ReadString('\n')
		if line != "" || err == nil {
			select {
			case lines <- strings.TrimSpace(line):
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errs <- err
			return
		}
	}
}

// handle dispatches one command line. It reports whether the player quit.
func (p *Player) handle(line string) bool {
	cmd := strings.ToLower(line)
	if cmd == "q" || cmd == "quit" {
		return true
	}

	snap := p.ctrl.Snapshot()
	switch snap.Phase {
	case game.PhaseStart:
		p.handleStart(cmd, snap)
	case game.PhasePlaying:
		p.handlePlaying(cmd, snap)
	case game.PhaseFinished:
		if cmd == "" || cmd == "r" {
			p.ctrl.Restart()
			p.renderStart(p.ctrl.Snapshot())
		}
	case game.PhaseStats:
		p.handleStats(cmd)
	}
	return false
}

func (p *Player) handleStart(cmd string, snap game.Snapshot) {
	switch cmd {
	case "", "p":
		if err := p.ctrl.Start(); err != nil {
			p.printf("⚠️ %v\n", err)
		}
	case "a":
		p.report(p.ctrl.SelectAllThemes())
		p.renderStart(p.ctrl.Snapshot())
	case "x":
		p.report(p.ctrl.DeselectAllThemes())
		p.renderStart(p.ctrl.Snapshot())
	case "s":
		p.openStats()
	default:
		n, err := strconv.Atoi(cmd)
		themes := p.catalog.ThemeIDs()
		if err != nil || n < 1 || n > len(themes) {
			p.printf("⚠️ Unknown command %q\n", cmd)
			return
		}
		p.report(p.ctrl.ToggleTheme(themes[n-1]))
		p.renderStart(p.ctrl.Snapshot())
	}
}

func (p *Player) handlePlaying(cmd string, snap game.Snapshot) {
	q := snap.Question
	switch {
	case cmd == "h":
		if !p.ctrl.RevealHint() {
			p.printf("⚠️ No hint available\n")
		}
	case cmd == "r":
		p.ctrl.Restart()
		p.renderStart(p.ctrl.Snapshot())
	case cmd == "s":
		p.openStats()
	case q != nil && q.Answered && (cmd == "" || cmd == "n"):
		p.report(p.ctrl.Next())
	case q != nil && !q.Answered:
		n, err := strconv.Atoi(cmd)
		if err != nil || n < 1 || n > len(q.Options) {
			p.printf("⚠️ Pick an option between 1 and %d\n", len(q.Options))
			return
		}
		if _, err := p.ctrl.Answer(q.Options[n-1]); err != nil {
			p.printf("⚠️ %v\n", err)
		}
	default:
		p.printf("⚠️ Unknown command %q\n", cmd)
	}
}

func (p *Player) handleStats(cmd string) {
	switch cmd {
	case "reset":
		p.report(p.ctrl.ResetStats())
	case "", "b":
		p.report(p.ctrl.CloseStats())
		p.renderStart(p.ctrl.Snapshot())
	default:
		p.printf("⚠️ Type reset, or press Enter to go back\n")
	}
}

func (p *Player) openStats() {
	if err := p.ctrl.OpenStats(); err != nil {
		p.printf("⚠️ %v\n", err)
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	RenderReport(p.out, p.ctrl.Report())
	fmt.Fprintln(p.out, "Type reset to clear statistics, Enter to go back.")
}

func (p *Player) report(err error) {
	if err != nil {
		p.printf("⚠️ %v\n", err)
	}
}

func (p *Player) onEvent(ev game.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap := ev.Snapshot
	switch ev.Type {
	case game.EventQuestion:
		renderQuestion(p.out, snap)
	case game.EventHint:
		if snap.Question != nil {
			fmt.Fprintf(p.out, "💡 Picture: %s (%d hints left)\n", snap.Question.Image, snap.HintsRemaining)
		}
	case game.EventTick:
		if snap.TimeLeft <= countdownWarning {
			fmt.Fprintf(p.out, "⏳ %d\n", snap.TimeLeft)
		}
	case game.EventResolved:
		renderResolution(p.out, snap, ev.Resolution)
	case game.EventFinished:
		renderFinished(p.out, snap)
	case game.EventStatsReset:
		fmt.Fprintln(p.out, "🧹 Statistics cleared.")
	}
}

func (p *Player) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *Player) renderStart(snap game.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	selected := make(map[string]bool, len(snap.SelectedThemes))
	for _, id := range snap.SelectedThemes {
		selected[id] = true
	}
	fmt.Fprintln(p.out, "\n🧩 Picture Riddle")
	fmt.Fprintln(p.out, "Themes (type a number to toggle, a = all, x = none):")
	for i, t := range p.catalog.Themes() {
		mark := " "
		if selected[t.ID] {
			mark = "x"
		}
		fmt.Fprintf(p.out, "  %d. [%s] %s\n", i+1, mark, t.Label)
	}
	if snap.CanStart {
		fmt.Fprintln(p.out, "Press Enter to play, s for statistics, q to quit.")
	} else {
		fmt.Fprintln(p.out, "Select at least one theme to play.")
	}
}

func renderQuestion(w io.Writer, snap game.Snapshot) {
	q := snap.Question
	if q == nil {
		return
	}
	fmt.Fprintln(w, "\n========================================")
	fmt.Fprintf(w, "Question %d | %s | Score %d | Hints %d | ⏳ %d\n",
		snap.QuestionCount, q.Theme, snap.Score, snap.HintsRemaining, snap.TimeLeft)
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "❓ %s\n", q.Riddle)
	for i, opt := range q.Options {
		fmt.Fprintf(w, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprintln(w, "Answer 1-4, h for a hint.")
}

func renderResolution(w io.Writer, snap game.Snapshot, res *game.Resolution) {
	if res == nil {
		return
	}
	switch {
	case res.Correct:
		fmt.Fprintf(w, "✅ Correct! +%d (score %d)\n", res.Points, snap.Score)
	case res.TimedOut:
		fmt.Fprintf(w, "⏰ Time's up! It was %s.\n", res.Answer)
	default:
		fmt.Fprintf(w, "❌ Wrong, it was %s.\n", res.Answer)
	}
	fmt.Fprintln(w, "Press Enter for the next question.")
}

func renderFinished(w io.Writer, snap game.Snapshot) {
	fmt.Fprintln(w, "\n🎉 All questions completed!")
	fmt.Fprintf(w, "Score:     %d\n", snap.Score)
	fmt.Fprintf(w, "Questions: %d\n", snap.QuestionCount)
	fmt.Fprintf(w, "Correct:   %d (%d%%)\n", snap.Summary.Correct, snap.Summary.Accuracy)
	fmt.Fprintf(w, "Hints:     %d\n", snap.HintsUsed)
	fmt.Fprintln(w, "Press Enter to play again.")
}

// RenderReport prints lifetime statistics.
func RenderReport(w io.Writer, r stats.Report) {
	fmt.Fprintln(w, "📊 Statistics")
	fmt.Fprintln(w, "-------------")
	fmt.Fprintf(w, "Questions: %d\n", r.TotalQuestions)
	fmt.Fprintf(w, "Correct:   %d\n", r.CorrectAnswers)
	fmt.Fprintf(w, "Accuracy:  %d%%\n", r.Accuracy)
	fmt.Fprintf(w, "Hints:     %d\n", r.TotalHintsUsed)
	for _, t := range r.Themes {
		fmt.Fprintf(w, "  %-10s %3d/%-3d %3d%% %s\n", t.Label, t.Correct, t.Attempted, t.Accuracy, t.Band)
	}
}

// RenderThemes lists the catalog themes.
func RenderThemes(w io.Writer, c *catalog.Catalog) {
	for i, t := range c.Themes() {
		fmt.Fprintf(w, "%d. %s (%s) %d riddles\n", i+1, t.Label, t.ID, len(t.Items))
	}
}
