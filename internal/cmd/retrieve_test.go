package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olcbio/nastools/internal/history"
)

// writeTestConfig writes a config file describing a NAS layout under tmpDir
// and returns its path
func writeTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	configPath := filepath.Join(tmpDir, "config.yaml")
	content := fmt.Sprintf(`categories:
  fastq:
    extension: fastq
    glob: "*.fastq.gz"
    pair_limit: 2
  fasta:
    extension: fasta
    glob: "*.fasta"
    pair_limit: 1
roots:
  - path: %s
    patterns:
      fastq: ["*/*"]
  - path: %s
    patterns:
      fasta: ["*/*/BestAssemblies"]
history:
  enabled: true
  db_path: %s
`,
		filepath.Join(tmpDir, "raw_sequence_data"),
		filepath.Join(tmpDir, "processed_sequence_data"),
		filepath.Join(tmpDir, "history.db"))

	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

// writeSeqFile creates a file with placeholder content, making parent
// directories as needed
func writeSeqFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("@read\nACGT\n+\n!!!!\n"), 0644))
}

// writeSeqIDFile writes the requested IDs, one per line
func writeSeqIDFile(t *testing.T, tmpDir string, ids ...string) string {
	t.Helper()
	path := filepath.Join(tmpDir, "seqids.txt")
	var content string
	for _, id := range ids {
		content += id + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// runRetrieve executes the retrieve command with the given extra args and
// returns combined output
func runRetrieve(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRetrieveCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// TestRetrieveLinksPairedReads verifies the end-to-end link flow: paired
// reads linked into the outdir, missing SEQ ID reported without failing the
// run, history recorded
func TestRetrieveLinksPairedReads(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)

	run := filepath.Join(tmpDir, "raw_sequence_data", "150101_M01234", "fc1")
	writeSeqFile(t, filepath.Join(run, "2015-SEQ-001_S1_L001_R1_001.fastq.gz"))
	writeSeqFile(t, filepath.Join(run, "2015-SEQ-001_S1_L001_R2_001.fastq.gz"))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "processed_sequence_data"), 0755))

	seqIDFile := writeSeqIDFile(t, tmpDir, "2015-SEQ-001", "2015-SEQ-999")
	outDir := filepath.Join(tmpDir, "out")

	output, err := runRetrieve(t,
		"--file", seqIDFile, "--outdir", outDir, "--type", "fastq",
		"--config", configPath)
	require.NoError(t, err, output)

	// Both reads linked
	for _, name := range []string{
		"2015-SEQ-001_S1_L001_R1_001.fastq.gz",
		"2015-SEQ-001_S1_L001_R2_001.fastq.gz",
	} {
		link := filepath.Join(outDir, name)
		target, err := os.Readlink(link)
		require.NoError(t, err, "expected %s to be a symlink", name)
		assert.False(t, filepath.IsAbs(target), "link target should be relative")
	}

	// Missing SEQ ID reported, run still succeeds
	assert.Contains(t, output, "2015-SEQ-999")
	assert.Contains(t, output, "could not be located")

	// Run recorded in history
	store, err := history.NewStore(filepath.Join(tmpDir, "history.db"))
	require.NoError(t, err)
	defer store.Close()
	runs, err := store.RecentRuns(5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Requested)
	assert.Equal(t, 1, runs[0].Found)
	assert.Equal(t, 1, runs[0].Missing)
	assert.Equal(t, 2, runs[0].Delivered)
	assert.Equal(t, "link", runs[0].Mode)
}

// TestRetrieveCopyMode verifies --copy produces regular files
func TestRetrieveCopyMode(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)

	writeSeqFile(t, filepath.Join(tmpDir, "processed_sequence_data", "2015", "run1", "BestAssemblies", "2015-SEQ-001.fasta"))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "raw_sequence_data"), 0755))

	seqIDFile := writeSeqIDFile(t, tmpDir, "2015-SEQ-001")
	outDir := filepath.Join(tmpDir, "out")

	output, err := runRetrieve(t,
		"--file", seqIDFile, "--outdir", outDir, "--type", "fasta",
		"--copy", "--config", configPath)
	require.NoError(t, err, output)

	info, err := os.Lstat(filepath.Join(outDir, "2015-SEQ-001.fasta"))
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink, "copy mode should not create symlinks")
}

// TestRetrieveUnreachableRoot verifies a missing NAS root is fatal before
// any delivery
func TestRetrieveUnreachableRoot(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)
	// Neither NAS root directory is created

	seqIDFile := writeSeqIDFile(t, tmpDir, "2015-SEQ-001")
	outDir := filepath.Join(tmpDir, "out")

	_, err := runRetrieve(t,
		"--file", seqIDFile, "--outdir", outDir, "--type", "fastq",
		"--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "properly mounted")

	// Nothing delivered
	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "output directory should not be created")
}

// TestRetrieveUnknownType verifies an unconfigured file type is rejected
func TestRetrieveUnknownType(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)
	seqIDFile := writeSeqIDFile(t, tmpDir, "2015-SEQ-001")

	_, err := runRetrieve(t,
		"--file", seqIDFile, "--outdir", filepath.Join(tmpDir, "out"),
		"--type", "bam", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown file type")
}

// TestRetrieveEmptySeqIDFile verifies an empty ID list is a configuration
// error
func TestRetrieveEmptySeqIDFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)
	seqIDFile := writeSeqIDFile(t, tmpDir)

	_, err := runRetrieve(t,
		"--file", seqIDFile, "--outdir", filepath.Join(tmpDir, "out"),
		"--type", "fastq", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SEQ IDs")
}

// TestRetrieveSkipsExistingDestination verifies a second run over the same
// outdir skips files already present
func TestRetrieveSkipsExistingDestination(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeTestConfig(t, tmpDir)

	writeSeqFile(t, filepath.Join(tmpDir, "raw_sequence_data", "run1", "fc1", "2015-SEQ-001_R1.fastq.gz"))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "processed_sequence_data"), 0755))

	seqIDFile := writeSeqIDFile(t, tmpDir, "2015-SEQ-001")
	outDir := filepath.Join(tmpDir, "out")

	output, err := runRetrieve(t,
		"--file", seqIDFile, "--outdir", outDir, "--type", "fastq",
		"--config", configPath)
	require.NoError(t, err, output)

	output, err = runRetrieve(t,
		"--file", seqIDFile, "--outdir", outDir, "--type", "fastq",
		"--config", configPath)
	require.NoError(t, err, output)
	assert.Contains(t, output, "already exists")
}
