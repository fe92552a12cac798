package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is the timestamp format used in output file names.
const TimestampLayout = "20060102-150405"

// maxAttempts bounds how often a colliding stem is re-suffixed.
const maxAttempts = 3

// Artifact is one rendered output, identified by its file extension.
type Artifact struct {
	Ext  string // without the dot, e.g. "json"
	Data []byte
}

// WriteJSON encodes v as indented JSON and writes it to w.
func WriteJSON(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON encodes v as indented JSON with a trailing newline.
func MarshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(v, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BaseName returns the file name of path without directory and extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Stem returns "<base>_<timestamp>", the file name shared by all artifacts
// of one run.
func Stem(base string, t time.Time) string {
	return base + "_" + t.Format(TimestampLayout)
}

// Export writes all artifacts into dir as <stem>.<ext>, creating dir if
// needed. Files are created exclusively: when any of them already exists
// the stem gets a short random suffix, so earlier results are never
// overwritten. It returns the written paths in artifact order.
//
// On failure every file created by this call is removed again.
func Export(dir, stem string, artifacts []Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	files, err := createAll(dir, stem, artifacts)
	for attempt := 1; errors.Is(err, fs.ErrExist) && attempt < maxAttempts; attempt++ {
		files, err = createAll(dir, stem+"_"+shortID(), artifacts)
	}
	if err != nil {
		return nil, err
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Name()
	}
	for i, f := range files {
		_, werr := f.Write(artifacts[i].Data)
		cerr := f.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			for _, g := range files[i+1:] {
				g.Close()
			}
			removeAll(paths)
			return nil, fmt.Errorf("write %s: %w", paths[i], werr)
		}
	}
	return paths, nil
}

// createAll opens every artifact path with O_EXCL. If one fails, the files
// already created are closed and removed.
func createAll(dir, stem string, artifacts []Artifact) ([]*os.File, error) {
	files := make([]*os.File, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(dir, stem+"."+a.Ext)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			paths := make([]string, len(files))
			for i, g := range files {
				paths[i] = g.Name()
				g.Close()
			}
			removeAll(paths)
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
		files = append(files, f)
	}
	return files, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

func shortID() string {
	return uuid.NewString()[:8]
}
