package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/httpclient"
	"github.com/taoky/tsumugu/parser"
)

// TestCalibrateComputesOffset reproduces spec §8 Fixture F: the server's real
// Last-Modified header for the probed file is 00:00 UTC, but the listing
// reports a naive mtime of 08:00, so the inferred offset is +8h.
func TestCalibrateComputesOffset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Last-Modified", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC).Format(time.RFC1123))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := httpclient.New(cmn.TransportArgs{UserAgent: "tsumugu-test"}, 1)
	naive := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	items := []parser.ListingItem{{Name: "timezone-probe", MTime: &naive}}

	offset, ok := httpclient.Calibrate(context.Background(), c, srv.URL+"/timezone-probe", items)
	require.True(t, ok)
	require.Equal(t, 8*time.Hour, time.Duration(offset))

	adjusted := offset.Apply(naive)
	require.Equal(t, 0, adjusted.Hour())
}

func TestCalibrateDisabledWhenFileNotInListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := httpclient.New(cmn.TransportArgs{UserAgent: "tsumugu-test"}, 1)
	_, ok := httpclient.Calibrate(context.Background(), c, srv.URL+"/missing", nil)
	require.False(t, ok)
}

func TestCalibrateDisabledOnInvalidURL(t *testing.T) {
	c := httpclient.New(cmn.TransportArgs{UserAgent: "tsumugu-test"}, 1)
	_, ok := httpclient.Calibrate(context.Background(), c, "not-a-url", nil)
	require.False(t, ok)
}
