package main

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

func sanitizedName(filename string) string {
	if len(filename) > 1 && filename[1] == ':' {
		filename = filename[2:]
	}
	filename = strings.TrimLeft(strings.Replace(filename, `\`, "/", -1), `/`)
	return path.Clean(filename)
}

// safeEntryName reports the sanitized name of an archive entry and whether it
// stays inside the extraction directory.
func safeEntryName(name string) (string, bool) {
	clean := sanitizedName(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return clean, false
	}
	return clean, true
}

// extractEntries writes every entry below dest, mirroring archive paths.
// Entries that would land outside dest are skipped and returned by name.
func extractEntries(fs afero.Fs, files []*zip.File, dest string, log logrus.FieldLogger) (extracted int, skipped []string, err error) {
	var written int64
	for _, file := range files {
		name, ok := safeEntryName(file.Name)
		if !ok {
			log.WithField("entry", file.Name).Warn("refusing to extract entry outside output directory")
			skipped = append(skipped, file.Name)
			continue
		}
		target := filepath.Join(dest, filepath.FromSlash(name))

		if file.FileInfo().IsDir() {
			if err = fs.MkdirAll(target, 0755); err != nil {
				return extracted, skipped, errors.Wrapf(err, "mkdir %s", name)
			}
			extracted++
			continue
		}

		n, err := extractFile(fs, file, target)
		if err != nil {
			return extracted, skipped, errors.Wrapf(err, "extract %s", file.Name)
		}
		written += n
		extracted++
	}
	log.Debugf("extracted %d entries (%s) to %s", extracted, humanize.Bytes(uint64(written)), dest)
	return extracted, skipped, nil
}

func extractFile(fs afero.Fs, file *zip.File, target string) (n int64, err error) {
	if err = fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, err
	}
	rc, err := file.Open()
	if err != nil {
		return 0, errors.Wrap(err, "open-entry")
	}
	defer rc.Close()

	w, err := fs.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, err
	}
	n, err = io.Copy(w, rc)
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// sniffArchive returns the detected content type of r and whether it is a
// zip container (apk, jar and friends descend from application/zip).
func sniffArchive(r io.Reader) (string, bool) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", false
	}
	for cur := mtype; cur != nil; cur = cur.Parent() {
		if cur.Is("application/zip") {
			return mtype.String(), true
		}
	}
	return mtype.String(), false
}

func closeAndLog(closer io.Closer, location string, log logrus.FieldLogger) {
	if err := closer.Close(); err != nil {
		log.Debugf("failed to close %s: %v", location, err)
	}
}
