package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	// Color is auto, always or never.
	Color string
}

type ParseError struct{ msg string }

func (e *ParseError) Error() string { return e.msg }

type UI struct {
	out *Printer
	err *Printer
}

// Printer writes lines to one stream, coloring them when the profile allows.
type Printer struct {
	w       io.Writer
	profile termenv.Profile
}

func New(opts Options) (*UI, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	color := strings.ToLower(strings.TrimSpace(opts.Color))
	var profile termenv.Profile
	switch color {
	case "", "auto":
		profile = termenv.NewOutput(opts.Stderr).EnvColorProfile()
	case "always":
		profile = termenv.ANSI256
	case "never":
		profile = termenv.Ascii
	default:
		return nil, &ParseError{msg: fmt.Sprintf("invalid --color %q (expected auto|always|never)", opts.Color)}
	}

	return &UI{
		out: &Printer{w: opts.Stdout, profile: profile},
		err: &Printer{w: opts.Stderr, profile: profile},
	}, nil
}

func (u *UI) Out() *Printer { return u.out }
func (u *UI) Err() *Printer { return u.err }

func (p *Printer) Println(msg string) {
	_, _ = fmt.Fprintln(p.w, msg)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) Successf(format string, args ...any) {
	p.colored(termenv.ANSIGreen, fmt.Sprintf(format, args...))
}

func (p *Printer) Error(msg string) {
	p.colored(termenv.ANSIRed, msg)
}

func (p *Printer) colored(c termenv.ANSIColor, msg string) {
	s := termenv.String(msg)
	if p.profile != termenv.Ascii {
		s = s.Foreground(p.profile.Convert(c))
	}
	_, _ = fmt.Fprintln(p.w, s.String())
}

type ctxKey struct{}

func WithUI(ctx context.Context, u *UI) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func FromContext(ctx context.Context) *UI {
	if ctx == nil {
		return nil
	}
	u, _ := ctx.Value(ctxKey{}).(*UI)
	return u
}
