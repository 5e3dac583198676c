// Package deliver places resolved sequence files into the output directory,
// either by byte copy or by relative symbolic link.
//
// Links are relative so the output directory stays valid when the NAS mount
// point moves or the directory is viewed from a different host over the same
// share.
package deliver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/olcbio/nastools/internal/logger"
)

// Deliverer copies or links resolved files into an output directory.
type Deliverer struct {
	outDir string
	copy   bool
	log    logger.Logger
}

// New creates a Deliverer writing into outDir. When copy is true files are
// byte-copied; otherwise relative symlinks are created. The output directory
// is created if it does not exist.
func New(outDir string, copy bool, log logger.Logger) (*Deliverer, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}
	return &Deliverer{outDir: outDir, copy: copy, log: log}, nil
}

// Verb returns the present-participle description of the delivery mode, used
// in run logging ("Copying" or "Linking").
func (d *Deliverer) Verb() string {
	if d.copy {
		return "Copying"
	}
	return "Linking"
}

// Deliver places each source file into the output directory under its base
// name. A destination that already exists is never overwritten: it is
// skipped with a warning, in both modes. Returns the number of files
// actually placed.
func (d *Deliverer) Deliver(paths []string) (int, error) {
	placed := 0
	for _, src := range paths {
		name := filepath.Base(src)
		dst := filepath.Join(d.outDir, name)

		d.log.LogInfo(fmt.Sprintf("%s %s to %s", d.Verb(), src, dst))

		if _, err := os.Stat(dst); err == nil {
			d.log.LogWarn(fmt.Sprintf("%s already exists in %s, skipping", name, d.outDir))
			continue
		}

		var err error
		if d.copy {
			err = copyFile(src, dst)
		} else {
			err = relativeSymlink(src, d.outDir, dst)
		}
		if err != nil {
			return placed, err
		}
		placed++
	}
	return placed, nil
}

// copyFile copies src to dst, preserving nothing but the bytes.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// relativeSymlink links dst to src using the path of src relative to the
// output directory, e.g.
// ../../raw_sequence_data/run1/fc1/2015-SEQ-001_R1.fastq.gz.
func relativeSymlink(src, outDir, dst string) error {
	rel, err := filepath.Rel(outDir, src)
	if err != nil {
		return fmt.Errorf("failed to relativize %s against %s: %w", src, outDir, err)
	}
	if err := os.Symlink(rel, dst); err != nil {
		return fmt.Errorf("failed to link %s: %w", dst, err)
	}
	return nil
}
