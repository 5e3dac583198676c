// Package resolve maps requested SEQ IDs to sequence files on the NAS.
//
// Resolution is a forward scan executed once per invocation: every search
// root is enumerated with the glob patterns registered for the requested
// category, discovered files are grouped by the SEQ ID derived from their
// names, and each requested identifier is matched against the grouped
// candidates. Duplicate copies are tolerated with a warning rather than
// failing the batch; stale copies left by earlier runs are the common case
// and aborting for one of them would be worse than proceeding
// deterministically with the best pick.
package resolve

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/olcbio/nastools/internal/config"
	"github.com/olcbio/nastools/internal/display"
	"github.com/olcbio/nastools/internal/extract"
	"github.com/olcbio/nastools/internal/logger"
)

// Candidate is a file discovered during scanning, before it is matched to a
// requested identifier.
type Candidate struct {
	// Path is the full path of the discovered file
	Path string
	// SeqID is the identifier derived from the file's base name
	SeqID string
	// Root is the search root the file was found under
	Root string
}

// Result holds the outcome of a resolution pass.
type Result struct {
	// Found maps each resolved SEQ ID to its selected file paths, sorted
	// lexicographically
	Found map[string][]string
	// Missing lists requested SEQ IDs with no candidate in any root,
	// sorted
	Missing []string
}

// candidateSet groups candidate paths by derived SEQ ID. Appending through
// add creates the slice on first insertion, so callers never check for
// presence first.
type candidateSet map[string][]string

func (cs candidateSet) add(seqID, path string) {
	cs[seqID] = append(cs[seqID], path)
}

// Resolver locates sequence files for requested SEQ IDs across the
// configured search roots. All state is supplied at construction; a Resolver
// holds no results between invocations and Resolve may be called repeatedly.
type Resolver struct {
	roots      []config.SearchRoot
	categories map[string]config.Category
	log        logger.Logger
	warnOut    io.Writer
}

// New creates a Resolver from configuration. Warnings about duplicate copies
// are rendered to warnOut; pass nil to direct them to standard error.
func New(cfg *config.Config, log logger.Logger, warnOut io.Writer) *Resolver {
	if warnOut == nil {
		warnOut = os.Stderr
	}
	return &Resolver{
		roots:      cfg.Roots,
		categories: cfg.Categories,
		log:        log,
		warnOut:    warnOut,
	}
}

// VerifyRoots ensures every configured search root is a reachable directory.
// A missing root means the NAS is not properly mounted; resolution must not
// start, because an unreachable root would silently report every one of its
// samples as missing.
func (r *Resolver) VerifyRoots() error {
	for _, root := range r.roots {
		info, err := os.Stat(root.Path)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("could not find %s: ensure the NAS is properly mounted", root.Path)
		}
	}
	return nil
}

// Resolve locates files for the requested SEQ IDs in the given category.
//
// Identifiers are processed in sorted order and candidates are sorted by
// path before selection, so repeated runs over an unchanged file system
// produce identical results regardless of enumeration order. Missing
// identifiers are collected, never fatal.
func (r *Resolver) Resolve(seqIDs []string, category string) (*Result, error) {
	cat, ok := r.categories[category]
	if !ok {
		return nil, fmt.Errorf("unknown file category %q", category)
	}

	candidates, err := r.scan(category, cat)
	if err != nil {
		return nil, err
	}

	grouped := make(candidateSet)
	for _, c := range candidates {
		grouped.add(c.SeqID, c.Path)
	}

	requested := append([]string(nil), seqIDs...)
	sort.Strings(requested)

	result := &Result{Found: make(map[string][]string)}
	for _, seqID := range requested {
		paths, ok := grouped[seqID]
		if !ok {
			result.Missing = append(result.Missing, seqID)
			continue
		}

		sort.Strings(paths)
		if len(paths) > cat.PairLimit {
			r.warnDuplicates(seqID, cat.PairLimit, paths)
			paths = paths[:cat.PairLimit]
		}
		result.Found[seqID] = paths
	}

	return result, nil
}

// scan enumerates every root/pattern combination registered for the category
// and derives a SEQ ID for each matched file. A root with no patterns for
// the category contributes nothing; that is configuration, not an error.
func (r *Resolver) scan(category string, cat config.Category) ([]Candidate, error) {
	ex := extract.New(cat.Extension)

	var candidates []Candidate
	for _, root := range r.roots {
		patterns := root.Patterns[category]
		if len(patterns) == 0 {
			continue
		}

		r.log.LogDebug(fmt.Sprintf("scanning %s for %s files", root.Path, category))

		for _, pattern := range patterns {
			matches, err := filepath.Glob(filepath.Join(root.Path, pattern, cat.Glob))
			if err != nil {
				return nil, fmt.Errorf("bad glob pattern %q under %s: %w", pattern, root.Path, err)
			}

			for _, path := range matches {
				base := filepath.Base(path)
				seqID := ex.Identifier(base)
				if seqID == base {
					// No stripping rule matched; the whole name
					// becomes the identifier. Lenient but worth a
					// trace for diagnosing unresolved IDs.
					r.log.LogDebug(fmt.Sprintf("no suffix rule matched %s; using full name as SEQ ID", base))
				}
				candidates = append(candidates, Candidate{
					Path:  path,
					SeqID: seqID,
					Root:  root.Path,
				})
			}
		}
	}

	return candidates, nil
}

// warnDuplicates reports more candidate files than expected for one SEQ ID,
// listing the distinct directories holding the copies.
func (r *Resolver) warnDuplicates(seqID string, limit int, paths []string) {
	r.log.LogWarn(fmt.Sprintf("located %d copies of %s where at most %d expected", len(paths), seqID, limit))

	display.Warning{
		Title:      fmt.Sprintf("located multiple copies of %s", seqID),
		Message:    fmt.Sprintf("%d files matched where at most %d expected; using the first %d by sort order", len(paths), limit, limit),
		Locations:  distinctDirs(paths),
		Suggestion: "ensure only a single copy is present on the NAS",
	}.Display(r.warnOut)
}

// distinctDirs returns the sorted set of directories containing the paths.
func distinctDirs(paths []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, path := range paths {
		dir := filepath.Dir(path)
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// FormatMissing renders the end-of-run report line for unresolved SEQ IDs.
func FormatMissing(missing []string) string {
	return fmt.Sprintf("files for the following SEQ IDs could not be located: %s", strings.Join(missing, ", "))
}
