package reconcile_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/httpclient"
	"github.com/taoky/tsumugu/reconcile"
)

func TestDownloadStreamsAndSetsOwnMtime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "sub", "file.bin")
	mtime := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)

	client := httpclient.New(cmn.TransportArgs{UserAgent: "tsumugu-test"}, 2)
	var progressed int64
	err := reconcile.Download(context.Background(), client, srv.URL, dest, &mtime, 2, func(n int64) {
		progressed += n
	})
	require.NoError(t, err)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))
	require.EqualValues(t, len("payload"), progressed)

	fi, err := os.Stat(dest)
	require.NoError(t, err)
	require.True(t, fi.ModTime().Equal(mtime))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no leftover temp file")
}

func TestDownloadFailsPermanentlyAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "file.bin")
	client := httpclient.New(cmn.TransportArgs{UserAgent: "tsumugu-test"}, 1)
	err := reconcile.Download(context.Background(), client, srv.URL, dest, nil, 1, nil)
	require.Error(t, err)
	var downloadErr *cmn.DownloadFailure
	require.ErrorAs(t, err, &downloadErr)
}
