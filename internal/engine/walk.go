package engine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/redactyl/confscan/internal/filetype"
	"github.com/redactyl/confscan/internal/ignore"
	"github.com/redactyl/confscan/internal/logging"
)

// Target is one file to scan.
type Target struct {
	// Path is the filesystem path used to open the file.
	Path string
	// Display is the cleaned path reported in findings: the target as given
	// on the command line joined with the file's path below it.
	Display string
	Type    filetype.Type
}

// SkippedFile records a file that was selected but could not be scanned.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Resolve expands cfg.Targets into files in command-line order. Directory
// contents are visited in lexical order and files reachable from more than
// one target are returned once. Unreadable directories, the target itself
// included, are returned as skipped files; a missing target is fatal.
func Resolve(cfg Config) ([]Target, []SkippedFile, error) {
	if len(cfg.Targets) == 0 {
		return nil, nil, &ConfigError{Msg: "no targets given"}
	}
	includes := parseGlobsList(cfg.IncludeGlobs)
	excludes := parseGlobsList(cfg.ExcludeGlobs)
	if err := validateGlobs(includes); err != nil {
		return nil, nil, err
	}
	if err := validateGlobs(excludes); err != nil {
		return nil, nil, err
	}
	ft := cfg.FileType
	if ft == "" {
		ft = filetype.Auto
	}

	log := logging.OrNop(cfg.Logger)
	seen := map[uint64]bool{}
	var out []Target
	var skipped []SkippedFile
	add := func(t Target) {
		key := t.Path
		if abs, err := filepath.Abs(t.Path); err == nil {
			key = abs
		}
		h := xxhash.Sum64String(key)
		if seen[h] {
			return
		}
		seen[h] = true
		out = append(out, t)
	}

	for _, arg := range cfg.Targets {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, nil, &TargetNotFoundError{Path: arg, Err: err}
		}
		if !info.IsDir() {
			t := ft
			if t == filetype.Auto {
				t = filetype.Detect(arg)
				if t == "" {
					t = filetype.Text
				}
			}
			add(Target{Path: arg, Display: filepath.Clean(arg), Type: t})
			continue
		}

		ign, ierr := ignore.Load(filepath.Join(arg, ignore.FileName))
		if ierr != nil && !errors.Is(ierr, fs.ErrNotExist) {
			log.Warnw("could not read ignore file", "dir", arg, "error", ierr)
		}
		werr := filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warnw("skipping unreadable path", "path", p, "error", err)
				skipped = append(skipped, SkippedFile{Path: p, Reason: err.Error(), Err: &FileReadError{Path: p, Err: err}})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			rel, _ := filepath.Rel(arg, p)
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if p == arg {
					return nil
				}
				if !cfg.Recursive {
					return filepath.SkipDir
				}
				if cfg.DefaultExcludes && isDefaultDirExcluded(d.Name()) {
					return filepath.SkipDir
				}
				if ign.Match(rel) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			t := filetype.Detect(p)
			if ft != filetype.Auto {
				if t != ft {
					return nil
				}
			} else if t == "" {
				return nil
			}
			if !allowedByGlobs(rel, includes, excludes) {
				return nil
			}
			if ign.Match(rel) {
				return nil
			}
			if cfg.DefaultExcludes && isDefaultFileExcluded(strings.ToLower(rel)) {
				return nil
			}
			if cfg.MaxBytes > 0 {
				if fi, err := d.Info(); err == nil && fi.Size() > cfg.MaxBytes {
					log.Debugw("skipping large file", "path", p, "size", fi.Size(), "max_bytes", cfg.MaxBytes)
					return nil
				}
			}
			add(Target{Path: p, Display: filepath.Clean(p), Type: t})
			return nil
		})
		if werr != nil {
			return nil, nil, &FileReadError{Path: arg, Err: werr}
		}
	}
	return out, skipped, nil
}
