package reconcile

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/teris-io/shortid"

	"github.com/taoky/tsumugu/cmn"
	"github.com/taoky/tsumugu/httpclient"
)

// progressReader wraps a response body to report bytes as they stream
// through, grounded on the teacher's downloader.progressReader.
type progressReader struct {
	r        io.Reader
	reporter func(n int64)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 && pr.reporter != nil {
		pr.reporter(int64(n))
	}
	return n, err
}

// Download implements spec §4.4's download protocol: stream to a temp file
// alongside the destination, set mtime on success, then atomically rename
// into place. Grounded on fs.MountpathInfo.MoveToTrash's
// write-aside-then-os.Rename idiom, generalized from directory-move to
// single-file download.
func Download(ctx context.Context, client *httpclient.Client, url, destination string, mtime *time.Time, retries int, onProgress func(n int64)) error {
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return &cmn.FilesystemError{Path: filepath.Dir(destination), Cause: err}
	}

	var lastErr error
	sleep := 500 * time.Millisecond
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
			sleep *= 2
		}
		if err := downloadOnce(ctx, client, url, destination, mtime, onProgress); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return &cmn.DownloadFailure{URL: url, Local: destination, Cause: lastErr}
}

func downloadOnce(ctx context.Context, client *httpclient.Client, url, destination string, mtime *time.Time, onProgress func(n int64)) error {
	resp, err := client.Get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	sid, err := shortid.Generate()
	if err != nil {
		sid = "tmp"
	}
	tmpPath := destination + ".tsumugu-" + sid + ".tmp"

	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "create temp file for %s", destination)
	}

	var body io.Reader = resp.Body
	if onProgress != nil {
		body = &progressReader{r: resp.Body, reporter: onProgress}
	}
	_, copyErr := io.Copy(f, body)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(copyErr, "stream body for %s", destination)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(closeErr, "close temp file for %s", destination)
	}

	if mtime != nil {
		if err := os.Chtimes(tmpPath, *mtime, *mtime); err != nil {
			os.Remove(tmpPath)
			return errors.Wrapf(err, "set mtime for %s", destination)
		}
	}

	if err := os.Rename(tmpPath, destination); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "rename temp file into %s", destination)
	}
	return nil
}
