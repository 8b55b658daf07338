package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/energy-weather-recon/internal/domain"
)

// SkipReason classifies why a file was rejected. Skips are logged and
// counted; they never abort a run.
type SkipReason string

const (
	ReasonUnparseableFilename   SkipReason = "unparseable-filename"
	ReasonUnrecognizedStructure SkipReason = "unrecognized-structure"
	ReasonNoUsableDate          SkipReason = "no-usable-date"
	ReasonUnsupportedType       SkipReason = "unsupported-type"
	ReasonUnreadable            SkipReason = "unreadable"
)

// SkipError marks a file as skipped with a machine-readable reason.
type SkipError struct {
	Reason SkipReason
	Path   string
	Detail string
}

func (e *SkipError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", e.Reason, e.Path)
	}
	return fmt.Sprintf("%s: %s: %s", e.Reason, e.Path, e.Detail)
}

// filenameRe matches the fetcher's naming convention:
// {kind}_{cityToken}_{YYYY-MM-DD}[_{YYYY-MM-DD}].{csv|json}.
// The city token is free text and may contain spaces or underscores;
// the lazy group stops at the first embedded date.
var filenameRe = regexp.MustCompile(`^(energy|weather)_(.+?)_(\d{4}-\d{2}-\d{2})`)

// FileClass is the parsed identity of one raw input file.
type FileClass struct {
	Kind      domain.Kind
	CityToken string
	Date      time.Time // start date embedded in the filename
}

// ClassifyFilename parses a raw file's base name into its kind, city
// token, and start date. Files outside the naming convention return a
// *SkipError with ReasonUnparseableFilename.
func ClassifyFilename(path string) (FileClass, error) {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	m := filenameRe.FindStringSubmatch(stem)
	if m == nil {
		return FileClass{}, &SkipError{Reason: ReasonUnparseableFilename, Path: base}
	}

	kind := domain.Kind(m[1])
	if !kind.Valid() {
		return FileClass{}, &SkipError{Reason: ReasonUnparseableFilename, Path: base, Detail: "unknown kind"}
	}

	date, ok := domain.ParseDate(m[3])
	if !ok {
		return FileClass{}, &SkipError{Reason: ReasonUnparseableFilename, Path: base, Detail: "bad embedded date"}
	}

	return FileClass{
		Kind:      kind,
		CityToken: m[2],
		Date:      date,
	}, nil
}

// ListInputFiles walks root (flat or nested) and returns every .csv and
// .json file, sorted with SortFiles. A missing root is an error; an
// empty root returns an empty list.
func ListInputFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".json":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan input dir: %w", err)
	}
	SortFiles(files)
	return files, nil
}

// SortFiles fixes the deterministic processing order feeding the
// master merge: lexical by path. Last-write-wins depends on this
// order, so it is applied explicitly rather than trusting filesystem
// enumeration.
func SortFiles(files []string) {
	sort.Strings(files)
}
