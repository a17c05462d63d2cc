// Package archive drives the bulk page-archiving utility. The downloading
// itself is delegated to wget as a subprocess; this package only handles
// the invocation, the URL list, the snapshot bookkeeping, and packaging.
package archive

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:53.0) Gecko/20100101 Firefox/53.0"

// Archiver shells out to wget for recursive page snapshots.
type Archiver struct {
	domain string
	wait   int
	logger *slog.Logger
}

// NewArchiver creates an archiver restricted to the given forum host, with
// a polite wait (in seconds) between requests.
func NewArchiver(domain string, waitSeconds int, logger *slog.Logger) *Archiver {
	return &Archiver{
		domain: domain,
		wait:   waitSeconds,
		logger: logger,
	}
}

// WriteURLList writes one URL per line to path, for wget's --input-file.
func WriteURLList(path string, urls []string) error {
	if err := os.WriteFile(path, []byte(strings.Join(urls, "\n")), 0o644); err != nil {
		return fmt.Errorf("write url list %s: %w", path, err)
	}
	return nil
}

// Run downloads every URL in the list file with page requisites and
// converted links. wget's exit status is the only success signal.
func (a *Archiver) Run(ctx context.Context, urlsFile string) error {
	args := []string{
		"--recursive",
		"--page-requisites",
		"--content-disposition",
		"--adjust-extension",
		"--convert-links",
		"--restrict-file-names=unix",
		"--no-parent",
		"--domains=" + a.domain,
		"-U", userAgent,
		fmt.Sprintf("--wait=%d", a.wait),
		"--input-file=" + urlsFile,
	}

	cmd := exec.CommandContext(ctx, "wget", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	a.logger.Info("starting wget", "urls_file", urlsFile, "domain", a.domain)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run wget: %w", err)
	}
	return nil
}

// Zip packs the download directory into a zip file at out, with paths
// relative to dir.
func Zip(dir, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create archive %s: %w", out, err)
	}
	defer f.Close()

	w := zip.NewWriter(f)

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		dst, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()

		_, err = io.Copy(dst, src)
		return err
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("pack archive %s: %w", out, err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize archive %s: %w", out, err)
	}
	return f.Close()
}
