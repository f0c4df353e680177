package setdoc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/jeandeaual/mtg-setxml/log"
)

const lockFileName = ".mtg-setxml.lock"

// ErrLocked is returned when another process is writing to the output
// directory.
var ErrLocked = errors.New("output directory locked by another process")

// Store reads and writes the documents of an output directory, one file per
// set named after its code.
type Store struct {
	dir string
}

// NewStore creates a store for the given directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the location of the document of a set.
func (s *Store) Path(code string) string {
	return filepath.Join(s.dir, code+".xml")
}

// Write stores a document. The document is written to a temporary file,
// parsed back and checked before replacing the previous version, so a
// failed write never leaves a partial document behind.
func (s *Store) Write(doc *Document) (err error) {
	code := doc.Set.ShortName
	if len(code) == 0 {
		return errors.New("document without a set short name")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(s.dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			log.Warnf("Failed to release the lock of %s: %v", s.dir, unlockErr)
		}
	}()

	tmp, err := os.CreateTemp(s.dir, code+".*.xml.tmp")
	if err != nil {
		return fmt.Errorf("create temporary file for %s: %w", code, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err = doc.Encode(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	if err = verify(tmpPath, doc); err != nil {
		return fmt.Errorf("invalid document for set %s: %w", code, err)
	}

	path := s.Path(code)
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("move %s to %s: %w", tmpPath, path, err)
	}

	log.Infof("Wrote %d cards to %s", len(doc.Set.Cards.Cards), path)

	return nil
}

// verify parses a written document and compares it to the original.
func verify(path string, expected *Document) error {
	written, err := readDocument(path)
	if err != nil {
		return err
	}

	if err := written.Check(); err != nil {
		return err
	}
	if written.Meta.Version != expected.Meta.Version {
		return fmt.Errorf("version %q written as %q", expected.Meta.Version, written.Meta.Version)
	}
	if len(written.Set.Cards.Cards) != len(expected.Set.Cards.Cards) {
		return fmt.Errorf("%d cards written, %d read back", len(expected.Set.Cards.Cards), len(written.Set.Cards.Cards))
	}

	return nil
}

// Read parses the stored document of a set.
func (s *Store) Read(code string) (*Document, error) {
	return readDocument(s.Path(code))
}

func readDocument(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	doc, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return doc, nil
}
