package httpclient

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/taoky/tsumugu/parser"
)

// Offset is the inferred difference between a naive mtime a parser reports
// (the server's local time) and the actual UTC instant it names: naive =
// actual + Offset, so subtracting Offset recovers UTC (spec §4.5, Fixture F:
// a naive listing time of 08:00 against a true Last-Modified of 00:00 UTC
// yields +08:00). Zero means "treat naive mtimes as already UTC".
type Offset time.Duration

// Calibrate probes timezoneFileURL with HEAD, reads its Last-Modified (UTC)
// header, and compares it to the mtime the same entry carries in listingItems
// (its parent directory's listing), returning the rounded-to-minute
// difference. A HEAD failure, a missing Last-Modified header, or a listing
// that doesn't contain the probed file name disables the probe: callers
// should fall back to a zero Offset (mtimes treated as UTC) rather than fail
// the run, since calibration is a best-effort refinement, not a correctness
// requirement.
func Calibrate(ctx context.Context, c *Client, timezoneFileURL string, listingItems []parser.ListingItem) (Offset, bool) {
	u, err := url.Parse(timezoneFileURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return 0, false
	}

	name := u.Path
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if name == "" {
		return 0, false
	}

	var naive *time.Time
	for _, item := range listingItems {
		if item.Name == name && item.MTime != nil {
			naive = item.MTime
			break
		}
	}
	if naive == nil {
		return 0, false
	}

	resp, err := c.Head(ctx, timezoneFileURL)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	lm := resp.Header.Get("Last-Modified")
	if lm == "" {
		return 0, false
	}
	actual, err := time.Parse(time.RFC1123, lm)
	if err != nil {
		return 0, false
	}

	delta := naive.UTC().Sub(actual.UTC()).Round(time.Minute)
	return Offset(delta), true
}

// Apply converts a naive mtime parsed from a listing into its actual UTC
// instant by subtracting the calibrated offset.
func (o Offset) Apply(t time.Time) time.Time {
	return t.Add(-time.Duration(o))
}
