// Command bandaudit classifies every event in a USGS summary feed against the
// magnitude and depth band tables. It reports how many events land in each
// band, which values fall between bands, and which values only land in a
// band because of one-decimal rounding.
//
// Usage:
//
//	go run ./cmd/bandaudit -file testdata/all_week.geojson
//	go run ./cmd/bandaudit -period "Past 7 Days"
//	go run ./cmd/bandaudit -period "Past Day" -feed-base http://localhost:8080/summary -strict
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/quake-map/internal/adapter/feed"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
)

// phase tracks pass/fail for an audit phase.
type phase struct {
	name   string
	errors []string
	notes  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) notef(format string, args ...any) {
	p.notes = append(p.notes, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bandaudit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("file", "", "path to a GeoJSON FeatureCollection")
	period := fs.String("period", "", "time period label to fetch, e.g. \"Past Day\"")
	feedBase := fs.String("feed-base", config.DefaultFeedBaseURL, "USGS summary feed base URL")
	timeout := fs.Duration("timeout", 30*time.Second, "feed request timeout")
	strict := fs.Bool("strict", false, "exit non-zero when any phase fails")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if (*file == "") == (*period == "") {
		fmt.Fprintln(stderr, "exactly one of -file or -period is required")
		fs.Usage()
		return 2
	}

	var (
		coll   feed.Collection
		source string
		err    error
	)
	if *file != "" {
		source = *file
		coll, err = loadFile(*file)
	} else {
		var p domain.Period
		p, err = domain.NewPeriods(*feedBase).Lookup(*period)
		if err == nil {
			source = p.URL
			coll, err = fetch(p.URL, *timeout, stderr)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: load feed: %v\n", err)
		return 1
	}

	events, rejected := feed.Events(coll.Features)
	phases := []*phase{
		auditDecoding(append(coll.Rejections, rejected...)),
		auditTable(events, domain.MagnitudeTable),
		auditTable(events, domain.DepthTable),
	}

	fmt.Fprintln(stdout, "=== Band Audit ===")
	fmt.Fprintf(stdout, "Source: %s\n", source)
	fmt.Fprintf(stdout, "Events: %d classified input, %d rejected\n\n", len(events), len(coll.Rejections)+len(rejected))

	printCounts(stdout, events, domain.MagnitudeTable)
	printCounts(stdout, events, domain.DepthTable)

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(stdout, "  %-32s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() && len(p.notes) == 0 {
			continue
		}
		fmt.Fprintf(stdout, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(stdout, "  [%d] %s\n", i+1, e)
		}
		for _, n := range p.notes {
			fmt.Fprintf(stdout, "  Note: %s\n", n)
		}
	}

	if allPassed {
		fmt.Fprintln(stdout, "\nAll events classified.")
		return 0
	}
	fmt.Fprintln(stdout, "\nAudit found unclassified events.")
	if *strict {
		return 1
	}
	return 0
}

func loadFile(path string) (feed.Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return feed.Collection{}, err
	}
	defer f.Close()
	return feed.Decode(f)
}

func fetch(url string, timeout time.Duration, stderr io.Writer) (feed.Collection, error) {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client := feed.NewClient(timeout, logger, observability.NewMetrics())
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return client.FetchCollection(ctx, feed.SourceEvents, url)
}

// ── Phases ──

func auditDecoding(rejected []feed.Rejection) *phase {
	p := &phase{name: "Feature decoding"}
	for _, r := range rejected {
		p.errorf("feature %d rejected (%s): %v", r.Index, r.Reason, r.Err)
	}
	return p
}

// auditTable fails for every event whose value falls between bands and notes
// every event whose band differs from the one its unrounded value would get.
func auditTable(events []domain.Event, t domain.CategoryTable) *phase {
	p := &phase{name: fmt.Sprintf("%s classification", t.Dimension)}
	for _, e := range events {
		v := t.Dimension.Value(e)
		band, ok := domain.Classify(v, t)
		if !ok {
			p.errorf("event %d: %s %g (rounds to %g) is in no band", e.ID, t.Dimension, v, domain.RoundOneDecimal(v))
			continue
		}
		if raw, rawOK := rawBand(v, t); !rawOK || raw != band {
			p.notef("event %d: %s %g lands in %q only after rounding", e.ID, t.Dimension, v, band)
		}
	}
	return p
}

// rawBand classifies v without rounding.
func rawBand(v float64, t domain.CategoryTable) (string, bool) {
	for _, b := range t.Bands {
		if b.Interval.Contains(v) {
			return b.Name, true
		}
	}
	return "", false
}

func printCounts(w io.Writer, events []domain.Event, t domain.CategoryTable) {
	counts := make(map[string]int, len(t.Bands))
	none := 0
	for _, e := range events {
		band, ok := domain.Classify(t.Dimension.Value(e), t)
		if !ok {
			none++
			continue
		}
		counts[band]++
	}
	fmt.Fprintf(w, "%s bands:\n", t.Dimension)
	for _, b := range t.Bands {
		fmt.Fprintf(w, "  %-10s %6d\n", b.Name, counts[b.Name])
	}
	fmt.Fprintf(w, "  %-10s %6d\n\n", "(none)", none)
}
