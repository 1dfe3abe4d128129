// Package complaintid builds human-readable complaint reference numbers of the
// form <service code><YYYYMMDD>-<sequence>, e.g. WS20231201-0001.
package complaintid

import (
	"fmt"
	"strings"
	"time"
)

// DefaultServiceCodes maps the known municipal service categories to their
// two-letter codes.
var DefaultServiceCodes = map[string]string{
	"property tax":       "PT",
	"water supply":       "WS",
	"waste management":   "WM",
	"street light":       "SL",
	"certificates":       "CI",
	"road issues":        "RI",
	"garbage collection": "GC",
	"drainage":           "DR",
}

// Generator hands out sequential complaint IDs. It is not safe for concurrent
// use; callers serialize access (the complaint registry does so under its lock).
type Generator struct {
	codes map[string]string
	next  int
	now   func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithClock overrides the clock used for the date segment
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithStart sets the first sequence number handed out
func WithStart(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.next = n
		}
	}
}

// WithCodes replaces the service code table
func WithCodes(codes map[string]string) Option {
	return func(g *Generator) {
		g.codes = make(map[string]string, len(codes))
		for k, v := range codes {
			g.codes[normalize(k)] = v
		}
	}
}

// New creates a generator whose sequence starts at 1
func New(opts ...Option) *Generator {
	g := &Generator{
		codes: DefaultServiceCodes,
		next:  1,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Next returns the ID for a new complaint in category and advances the
// sequence. The sequence is shared across all categories.
func (g *Generator) Next(category string) string {
	id := fmt.Sprintf("%s%s-%04d", g.Code(category), g.now().Format("20060102"), g.next)
	g.next++
	return id
}

// Code returns the service code for category. Unknown categories use their
// first two characters, uppercased.
func (g *Generator) Code(category string) string {
	return lookup(g.codes, category)
}

// Code returns the service code for category using DefaultServiceCodes.
// category must not be blank; the complaint registry rejects blank ones.
func Code(category string) string {
	return lookup(DefaultServiceCodes, category)
}

func lookup(codes map[string]string, category string) string {
	if code, ok := codes[normalize(category)]; ok {
		return code
	}

	runes := []rune(strings.TrimSpace(category))
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

func normalize(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}
