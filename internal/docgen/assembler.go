package docgen

import (
	"fmt"
	"strings"

	"docfoundry/internal/models"
)

const (
	documentHeader = "# Developer Documentation\n\n"
	introSection   = "## Introduction\nThis document provides a comprehensive overview and detailed documentation for the code files in this project.\n\n"
	tocHeading     = "## Table of Contents\n"
	bodyHeading    = "## File Documentation\n"
)

// Assembler merges per-file docs into one unified document. Sections exposes
// the same text as an ordered slice so the streaming path can emit it
// incrementally and still accumulate to the identical document.
type Assembler struct{}

func NewAssembler() *Assembler { return &Assembler{} }

// TableOfContents lists one markdown link per file; anchors replace dots
// with dashes.
func (a *Assembler) TableOfContents(docs []models.FileDoc) string {
	entries := make([]string, 0, len(docs))
	for _, doc := range docs {
		anchor := strings.ReplaceAll(doc.Filename, ".", "-")
		entries = append(entries, fmt.Sprintf("- [%s](#%s)", doc.Filename, anchor))
	}
	return strings.Join(entries, "\n")
}

// StaticSections returns the fixed fragments that precede the file docs:
// header, introduction, table of contents and the body heading. They depend
// only on the included filenames, so the streaming path can emit them
// before any backend call.
func (a *Assembler) StaticSections(docs []models.FileDoc) []string {
	return []string{
		documentHeader,
		introSection,
		tocHeading + a.TableOfContents(docs) + "\n\n",
		bodyHeading,
	}
}

// Sections returns the unified document as ordered fragments: the static
// prefix, then each file's documentation.
func (a *Assembler) Sections(docs []models.FileDoc) []string {
	sections := a.StaticSections(docs)
	for _, doc := range docs {
		sections = append(sections, doc.Documentation+"\n\n")
	}
	return sections
}

// Assemble produces the full unified document. Deterministic for identical
// input order.
func (a *Assembler) Assemble(docs []models.FileDoc) string {
	return strings.Join(a.Sections(docs), "")
}
