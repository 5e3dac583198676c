// Package display renders user-facing warning blocks for data-hygiene
// problems found during retrieval, such as duplicate copies of a sample's
// sequence files left on the NAS by earlier runs.
package display
