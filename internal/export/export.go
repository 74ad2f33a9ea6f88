// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes the downloadable artifacts of a session: the chat
// transcript, a BibTeX file of the DOI-bearing sources, and optionally a
// CSL-YAML reference file. Every write replaces the previous file.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/femcite/pkg/types"
)

// Artifact file names.
const (
	TranscriptFile   = "femcite_chat.txt"
	BibliographyFile = "femcite.bib"
	CSLFile          = "femcite.yaml"
)

// Writer persists session artifacts under a base directory.
type Writer struct {
	// Dir is the base directory; "." when empty.
	Dir string

	// PerSession places each session's files in Dir/<sessionID>/.
	PerSession bool

	// CSL also writes the CSL-YAML file on Persist.
	CSL bool

	Logger *zap.Logger
}

// New returns a Writer configured from cfg.
func New(cfg types.ExportConfig, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{Dir: cfg.Dir, PerSession: cfg.PerSession, CSL: cfg.CSL, Logger: logger}
}

// SessionDir returns the directory holding sessionID's artifacts.
func (w *Writer) SessionDir(sessionID string) (string, error) {
	base := w.Dir
	if base == "" {
		base = "."
	}
	if !w.PerSession {
		return base, nil
	}
	if sessionID == "" || sessionID != filepath.Base(sessionID) || strings.HasPrefix(sessionID, ".") {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return filepath.Join(base, sessionID), nil
}

// Path returns the location of artifact name for sessionID.
func (w *Writer) Path(sessionID, name string) (string, error) {
	dir, err := w.SessionDir(sessionID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// Persist writes the transcript and bibliography for the exchange, and the
// CSL file when enabled. Either every file is replaced or none is.
func (w *Writer) Persist(sessionID string, turns []types.ChatTurn, entries []types.SourceEntry) error {
	files := []artifact{
		{TranscriptFile, []byte(Transcript(turns))},
		{BibliographyFile, []byte(Bibliography(entries))},
	}
	if w.CSL {
		data, err := CSL(entries)
		if err != nil {
			return fmt.Errorf("encoding CSL: %w", err)
		}
		files = append(files, artifact{CSLFile, data})
	}
	return w.commit(sessionID, files)
}

// WriteTranscript overwrites the transcript file with Transcript(turns).
func (w *Writer) WriteTranscript(sessionID string, turns []types.ChatTurn) error {
	return w.commit(sessionID, []artifact{{TranscriptFile, []byte(Transcript(turns))}})
}

// WriteBibliography overwrites the BibTeX file with Bibliography(entries).
func (w *Writer) WriteBibliography(sessionID string, entries []types.SourceEntry) error {
	return w.commit(sessionID, []artifact{{BibliographyFile, []byte(Bibliography(entries))}})
}

// WriteCSL overwrites the CSL-YAML file with every entry.
func (w *Writer) WriteCSL(sessionID string, entries []types.SourceEntry) error {
	data, err := CSL(entries)
	if err != nil {
		return fmt.Errorf("encoding CSL: %w", err)
	}
	return w.commit(sessionID, []artifact{{CSLFile, data}})
}

type artifact struct {
	name string
	data []byte
}

// staged is an artifact written to a temp file next to its target, with the
// target's previous contents kept for rollback.
type staged struct {
	artifact
	path    string
	tmp     string
	prev    []byte
	existed bool
}

// commit stages every file in the session directory, then renames them into
// place. A failed rename restores the targets already replaced.
func (w *Writer) commit(sessionID string, files []artifact) error {
	dir, err := w.SessionDir(sessionID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	var batch []*staged
	cleanup := func() {
		for _, s := range batch {
			os.Remove(s.tmp)
		}
	}

	for _, f := range files {
		s := &staged{artifact: f, path: filepath.Join(dir, f.name)}
		s.prev, err = os.ReadFile(s.path)
		switch {
		case err == nil:
			s.existed = true
		case !os.IsNotExist(err):
			cleanup()
			return fmt.Errorf("writing %s: %w", f.name, err)
		}

		s.tmp, err = writeTemp(dir, f)
		if err != nil {
			cleanup()
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
		batch = append(batch, s)
	}

	for i, s := range batch {
		if err := os.Rename(s.tmp, s.path); err != nil {
			w.rollback(batch[:i])
			cleanup()
			return fmt.Errorf("writing %s: %w", s.name, err)
		}
		w.logger().Debug("artifact written", zap.String("path", s.path), zap.Int("bytes", len(s.data)))
	}
	return nil
}

func (w *Writer) rollback(done []*staged) {
	for _, s := range done {
		var err error
		if s.existed {
			err = os.WriteFile(s.path, s.prev, 0o644)
		} else {
			err = os.Remove(s.path)
		}
		if err != nil {
			w.logger().Error("restoring artifact", zap.String("path", s.path), zap.Error(err))
		}
	}
}

func writeTemp(dir string, f artifact) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+f.name+".*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(f.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (w *Writer) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}
