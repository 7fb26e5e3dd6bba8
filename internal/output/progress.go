package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ProgressBar reports how many items of a batch have been handled
type ProgressBar struct {
	mu       sync.Mutex
	writer   io.Writer
	title    string
	total    int
	current  int
	failed   int
	width    int
	noColor  bool
	finished bool
}

// ProgressBarConfig configures a progress bar
type ProgressBarConfig struct {
	Title   string
	Total   int
	Width   int
	NoColor bool
	Writer  io.Writer
}

// NewProgressBar creates a progress bar. A nil writer discards output.
func NewProgressBar(config ProgressBarConfig) *ProgressBar {
	if config.Width <= 0 {
		config.Width = 30
	}
	if config.Writer == nil {
		config.Writer = io.Discard
	}
	return &ProgressBar{
		writer:  config.Writer,
		title:   config.Title,
		total:   config.Total,
		width:   config.Width,
		noColor: config.NoColor,
	}
}

// Step records one handled item
func (p *ProgressBar) Step(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current < p.total {
		p.current++
	}
	if !ok {
		p.failed++
	}
	p.render()
}

// Finish completes the bar and ends its line
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return
	}
	p.finished = true
	p.render()
	fmt.Fprintln(p.writer)
}

// render redraws the bar in place. Callers hold mu.
func (p *ProgressBar) render() {
	if p.total <= 0 {
		return
	}

	filled := p.current * p.width / p.total

	var bar strings.Builder
	if p.title != "" {
		bar.WriteString(p.colorize(p.title+" ", color.FgCyan))
	}
	bar.WriteString("[")
	bar.WriteString(p.colorize(strings.Repeat("█", filled), color.FgGreen))
	bar.WriteString(strings.Repeat("░", p.width-filled))
	bar.WriteString("]")
	fmt.Fprintf(&bar, " %d/%d", p.current, p.total)
	if p.failed > 0 {
		bar.WriteString(p.colorize(fmt.Sprintf(" (%d failed)", p.failed), color.FgRed))
	}

	fmt.Fprintf(p.writer, "\r%s", bar.String())
}

func (p *ProgressBar) colorize(text string, attrs ...color.Attribute) string {
	if p.noColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// Spinner shows that a request is in flight
type Spinner struct {
	mu      sync.Mutex
	writer  io.Writer
	title   string
	chars   []string
	index   int
	active  bool
	ticker  *time.Ticker
	done    chan struct{}
	noColor bool
}

// NewSpinner creates a spinner writing to w. A nil writer disables it.
func NewSpinner(w io.Writer, title string, noColor bool) *Spinner {
	return &Spinner{
		writer:  w,
		title:   title,
		chars:   []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
		noColor: noColor,
	}
}

// Start begins animating
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active || s.writer == nil {
		return
	}

	s.active = true
	s.ticker = time.NewTicker(100 * time.Millisecond)
	s.done = make(chan struct{})

	go func(ticker *time.Ticker, done chan struct{}) {
		for {
			select {
			case <-ticker.C:
				s.render()
			case <-done:
				return
			}
		}
	}(s.ticker, s.done)
}

// Stop stops animating and clears the line
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	s.active = false
	s.ticker.Stop()
	close(s.done)

	fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len([]rune(s.title))+2))
}

// Update changes the spinner title
func (s *Spinner) Update(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

func (s *Spinner) render() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.active {
		return
	}

	char := s.chars[s.index]
	s.index = (s.index + 1) % len(s.chars)

	fmt.Fprintf(s.writer, "\r%s %s", s.colorize(char, color.FgCyan), s.title)
}

func (s *Spinner) colorize(text string, attrs ...color.Attribute) string {
	if s.noColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}
