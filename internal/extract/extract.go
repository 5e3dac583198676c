// Package extract derives canonical SEQ IDs from sequence file names.
//
// Sequencing instruments and downstream pipelines decorate file names with
// lane, read and block suffixes in several inconsistent conventions
// (2015-SEQ-001_S1_L001_R1_001.fastq.gz, 2015-SEQ-001_R1.fastq.gz,
// 2015-SEQ-001_1.fastq.gz, ...). The extractor strips those decorations to
// recover the identifier the sample was registered under.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Extractor strips suffix decorations for a single file category. The
// category's extension token ("fastq", "fasta") is baked into the compiled
// rules, so one Extractor is built per category and reused across files.
type Extractor struct {
	rules []*regexp.Regexp
}

// New builds an Extractor for the given extension token (no leading dot).
//
// The rules are ordered from most to least specific and the first match wins:
// the name is truncated at the match start and no further rules run.
// Reordering them changes results for names that contain both a numeric
// suffix and a read marker, so the order is part of the contract.
func New(extension string) *Extractor {
	ext := regexp.QuoteMeta(extension)
	return &Extractor{
		rules: []*regexp.Regexp{
			// Illumina sample index + lane + optional read + optional
			// block, e.g. _S24_L001_R1_001
			regexp.MustCompile(`(?i)_S\d+_L\d+(_R\d(_\d+)?)?`),
			// Read marker with a zero-padded block, e.g. _R1_001
			regexp.MustCompile(`(?i)_R\d_\d{3}`),
			// Bare read marker, e.g. _R1 / _R2
			regexp.MustCompile(`(?i)_R\d`),
			// Short numeric suffix at the end of the name (_1, -12,
			// _1_001), or an underscore-joined numeric suffix sitting
			// directly on the extension (_1.fastq.gz). Hyphen-joined
			// digits before the extension are left alone: that is how
			// canonical SEQ IDs themselves end (2015-SEQ-001.fasta).
			regexp.MustCompile(fmt.Sprintf(
				`(?i)([-_]\d{1,3}(_\d{3})?|_\d{1,3}(_\d{3})?\.%s(\.gz)?)$`, ext)),
			// The category extension with an optional compression
			// suffix, e.g. .fastq.gz or .fasta
			regexp.MustCompile(fmt.Sprintf(`(?i)(?:\.%s(?:\.gz)?)$`, ext)),
		},
	}
}

// Identifier returns the canonical SEQ ID for a file base name (no directory
// component). A name matching none of the rules is returned unchanged apart
// from trailing separator cleanup, a documented limitation for files that do
// not follow any recognised convention; callers log those at debug level
// rather than rejecting them.
func (e *Extractor) Identifier(fileName string) string {
	name := fileName
	for _, rule := range e.rules {
		if loc := rule.FindStringIndex(name); loc != nil {
			name = name[:loc[0]]
			break
		}
	}

	return strings.TrimRight(name, "_-")
}
