package setdoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jeandeaual/mtg-setxml/log"
)

// The version is the first element of a document, it has to be within the
// first bytes of the file.
const scanWindow = 2048

var versionRegex = regexp.MustCompile(`<version>(.*?)</version>`)

// Status of a stored document compared to the current schema version.
type Status int

const (
	// StatusCurrent means the document uses the current schema version.
	StatusCurrent Status = iota
	// StatusStale means the document was generated by an older version.
	StatusStale
	// StatusMissing means there is no readable document for the set.
	StatusMissing
	// StatusCorrupt means the document has no version, or an invalid one.
	StatusCorrupt
	// StatusNewer means the document was generated by a newer version.
	StatusNewer
)

func (s Status) String() string {
	switch s {
	case StatusCurrent:
		return "current"
	case StatusStale:
		return "stale"
	case StatusMissing:
		return "missing"
	case StatusCorrupt:
		return "corrupt"
	case StatusNewer:
		return "newer"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// NeedsUpdate reports whether a document with this status has to be
// regenerated. Anything that can't be confirmed as up to date is.
func (s Status) NeedsUpdate() bool {
	return s == StatusStale || s == StatusMissing || s == StatusCorrupt
}

// Result of the inspection of a stored document.
type Result struct {
	Code string
	// Version found in the document, if any.
	Version string
	Status  Status
	// Err is the reason of a missing or corrupt status.
	Err error
}

// Scanner compares the stored documents to the current schema version
// without parsing them.
type Scanner struct {
	store   *Store
	current string
}

// NewScanner creates a scanner for the documents of a store.
func NewScanner(store *Store) *Scanner {
	return &Scanner{
		store:   store,
		current: SchemaVersion,
	}
}

// Inspect reads the version of the document of a set.
func (s *Scanner) Inspect(code string) Result {
	result := Result{Code: code}

	version, err := readVersion(s.store.Path(code))
	switch {
	case errors.Is(err, errNoVersion):
		result.Status = StatusCorrupt
		result.Err = err
		return result
	case err != nil:
		result.Status = StatusMissing
		result.Err = err
		return result
	}

	result.Version = version

	cmp, err := CompareVersions(version, s.current)
	switch {
	case err != nil:
		result.Status = StatusCorrupt
		result.Err = err
	case cmp < 0:
		result.Status = StatusStale
	case cmp > 0:
		result.Status = StatusNewer
	default:
		result.Status = StatusCurrent
	}

	return result
}

// Check returns the status of the document of a set.
func (s *Scanner) Check(code string) Status {
	return s.Inspect(code).Status
}

// Stale returns the sorted codes of the sets whose document has to be
// regenerated.
func (s *Scanner) Stale(codes []string) []string {
	var stale []string

	for _, code := range codes {
		result := s.Inspect(code)

		switch result.Status {
		case StatusStale:
			log.Debugf("Set %s was generated with version %s", code, result.Version)
		case StatusMissing:
			log.Infof("No document for set %s: %v", code, result.Err)
		case StatusCorrupt:
			log.Warnf("Corrupt document for set %s: %v", code, result.Err)
		case StatusNewer:
			log.Warnf("Set %s was generated with version %s, newer than %s", code, result.Version, s.current)
		}

		if result.Status.NeedsUpdate() {
			stale = append(stale, code)
		}
	}

	sort.Strings(stale)

	return stale
}

var errNoVersion = errors.New("no version tag found")

func readVersion(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	buf := make([]byte, scanWindow)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	matches := versionRegex.FindSubmatch(buf[:n])
	if matches == nil {
		return "", fmt.Errorf("%s: %w", path, errNoVersion)
	}

	return string(matches[1]), nil
}

// CompareVersions compares two dotted numeric versions, component by
// component. Missing components count as 0.
func CompareVersions(a, b string) (int, error) {
	left, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	right, err := parseVersion(b)
	if err != nil {
		return 0, err
	}

	for i := 0; i < len(left) || i < len(right); i++ {
		var l, r int
		if i < len(left) {
			l = left[i]
		}
		if i < len(right) {
			r = right[i]
		}
		switch {
		case l < r:
			return -1, nil
		case l > r:
			return 1, nil
		}
	}

	return 0, nil
}

func parseVersion(version string) ([]int, error) {
	version = strings.TrimSpace(version)
	if len(version) == 0 {
		return nil, errors.New("empty version")
	}

	parts := strings.Split(version, ".")
	components := make([]int, 0, len(parts))

	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid version %q", version)
		}
		components = append(components, n)
	}

	return components, nil
}
