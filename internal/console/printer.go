package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/nao1215/blackbird/internal/model"
)

const banner = `
    ▄▄▄▄    ██▓    ▄▄▄       ▄████▄   ██ ▄█▀ ▄▄▄▄    ██▓ ██▀███  ▓█████▄
    ▓█████▄ ▓██▒   ▒████▄    ▒██▀ ▀█   ██▄█▒ ▓█████▄ ▓██▒▓██ ▒ ██▒▒██▀ ██▌
    ▒██▒ ▄██▒██░   ▒██  ▀█▄  ▒▓█    ▄ ▓███▄░ ▒██▒ ▄██▒██▒▓██ ░▄█ ▒░██   █▌
    ▒██░█▀  ▒██░   ░██▄▄▄▄██ ▒▓▓▄ ▄██▒▓██ █▄ ▒██░█▀  ░██░▒██▀▀█▄  ░▓█▄   ▌
    ░▓█  ▀█▓░██████▒▓█   ▓██▒▒ ▓███▀ ░▒██▒ █▄░▓█  ▀█▓░██░░██▓ ▒██▒░▒████▓
    ░▒▓███▀▒░ ▒░▓  ░▒▒   ▓▒█░░ ░▒ ▒  ░▒ ▒▒ ▓▒░▒▓███▀▒░▓  ░ ▒▓ ░▒▓░ ▒▒▓  ▒
    ▒░▒   ░ ░ ░ ▒  ░ ▒   ▒▒ ░  ░  ▒   ░ ░▒ ▒░▒░▒   ░  ▒ ░  ░▒ ░ ▒░ ░ ▒  ▒
    ░    ░   ░ ░    ░   ▒   ░        ░ ░░ ░  ░    ░  ▒ ░  ░░   ░  ░ ░  ░
    ░          ░  ░     ░  ░░ ░      ░  ░    ░       ░     ░        ░
        ░                  ░                     ░               ░
`

// AboutText describes the tool and the site data it relies on.
const AboutText = `Blackbird searches for accounts by username using data from the
WhatsMyName project, an open-source project developed by WebBreacher.

WhatsMyName License: Creative Commons Attribution-ShareAlike 4.0
International (CC BY-SA 4.0).
WhatsMyName Project: https://github.com/WebBreacher/WhatsMyName
`

// Printer writes progress messages. It is safe for concurrent use.
type Printer struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool

	red    *color.Color
	green  *color.Color
	blue   *color.Color
	yellow *color.Color
	cyan   *color.Color
	white  *color.Color
}

// Option configures a Printer.
type Option func(*Printer)

// WithVerbose also prints NOT_FOUND and ERROR outcomes.
func WithVerbose(verbose bool) Option {
	return func(p *Printer) {
		p.verbose = verbose
	}
}

// WithColor forces colored output on or off.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		p.setColor(enabled)
	}
}

// NewPrinter creates a Printer writing to w. Colors are enabled when w is a
// terminal and NO_COLOR is unset; WithColor overrides the detection.
func NewPrinter(w io.Writer, opts ...Option) *Printer {
	p := &Printer{
		out:    w,
		red:    color.New(color.FgRed),
		green:  color.New(color.FgGreen),
		blue:   color.New(color.FgBlue),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgHiCyan),
		white:  color.New(color.FgHiWhite),
	}
	p.setColor(IsTerminal(w) && os.Getenv("NO_COLOR") == "")

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

func (p *Printer) setColor(enabled bool) {
	for _, c := range []*color.Color{p.red, p.green, p.blue, p.yellow, p.cyan, p.white} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
}

func (p *Printer) println(a ...any) {
	p.write(fmt.Sprintln(a...))
}

func (p *Printer) write(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = io.WriteString(p.out, s) //nolint:errcheck // console output is best effort
}

// Banner prints the logo and the author line.
func (p *Printer) Banner() {
	p.println(p.red.Sprint(banner))
	p.println(p.white.Sprint("Made with love by Lucas Antoniaci (") + p.red.Sprint("p1ngul1n0") + p.white.Sprint(")"))
}

// About prints AboutText.
func (p *Printer) About() {
	p.write(AboutText)
}

// Start announces a search for username.
func (p *Printer) Start(username string) {
	p.println(fmt.Sprintf("▶ Enumerating accounts with username %q", p.cyan.Sprint(username)))
}

// Outcome prints one completed check. FOUND is always printed; NOT_FOUND
// and ERROR only in verbose mode; NONE never.
func (p *Printer) Outcome(o model.Outcome) {
	switch o.Status {
	case model.StatusFound:
		p.println(fmt.Sprintf("  ✔ [%s] %s", p.cyan.Sprint(o.Site), p.white.Sprint(o.URL)))
	case model.StatusNotFound:
		if p.verbose {
			p.println(fmt.Sprintf("  ✘ [%s] %s", p.blue.Sprint(o.Site), p.white.Sprint(o.URL)))
		}
	case model.StatusError:
		if p.verbose {
			p.println(fmt.Sprintf("  ⚠ [%s] %s: %s", p.yellow.Sprint(o.Site), p.white.Sprint(o.URL), o.Error))
		}
	default:
	}
}

// Completed prints the duration and the number of checked sites.
func (p *Printer) Completed(rs *model.ResultSet) {
	p.println(fmt.Sprintf("🏁 Check completed in %.1f seconds (%d sites)", rs.Elapsed.Seconds(), len(rs.Outcomes)))
}

// NoAccounts reports a run without any FOUND outcome.
func (p *Printer) NoAccounts() {
	p.println("⭕ No accounts were found for the given username")
}

// Saved reports an exported file.
func (p *Printer) Saved(path string) {
	p.println(fmt.Sprintf("💾 Saved results to '%s'", p.cyan.Sprint(path)))
}

// Error reports a failure along with its detail.
func (p *Printer) Error(message string, err error) {
	p.println("⛔ " + p.red.Sprint(message))
	p.println("     | An error occurred:")
	p.println(fmt.Sprintf("     | %v", err))
}

// Info prints a plain notice, such as site list refresh progress.
func (p *Printer) Info(message string) {
	p.println(message)
}
