package docgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"docfoundry/internal/models"
)

func TestTableOfContentsAnchors(t *testing.T) {
	a := NewAssembler()
	toc := a.TableOfContents([]models.FileDoc{
		{Filename: "main.go"},
		{Filename: "pkg/server.py"},
	})

	assert.Equal(t, "- [main.go](#main-go)\n- [pkg/server.py](#pkg/server-py)", toc)
}

func TestAssembleStructure(t *testing.T) {
	a := NewAssembler()
	docs := []models.FileDoc{
		{Filename: "a.go", Documentation: "### a.go\n#### Overview\ndoc a\n"},
		{Filename: "b.go", Documentation: "### b.go\n#### Overview\ndoc b\n"},
	}

	unified := a.Assemble(docs)

	assert.True(t, strings.HasPrefix(unified, "# Developer Documentation\n"))
	assert.Contains(t, unified, "## Introduction\n")
	assert.Contains(t, unified, "## Table of Contents\n- [a.go](#a-go)\n- [b.go](#b-go)")
	assert.Contains(t, unified, "## File Documentation\n")
	assert.Less(t, strings.Index(unified, "### a.go"), strings.Index(unified, "### b.go"))
}

func TestAssembleDeterministic(t *testing.T) {
	a := NewAssembler()
	docs := []models.FileDoc{
		{Filename: "x.go", Documentation: "### x.go\ndoc\n"},
	}

	assert.Equal(t, a.Assemble(docs), a.Assemble(docs))
}

func TestSectionsConcatenateToAssemble(t *testing.T) {
	a := NewAssembler()
	docs := []models.FileDoc{
		{Filename: "one.go", Documentation: "### one.go\ndoc one\n"},
		{Filename: "two.ts", Documentation: "### two.ts\ndoc two\n"},
	}

	var rebuilt strings.Builder
	for _, section := range a.Sections(docs) {
		rebuilt.WriteString(section)
	}
	assert.Equal(t, a.Assemble(docs), rebuilt.String())
}

func TestStaticSectionsPrecedeFileDocs(t *testing.T) {
	a := NewAssembler()
	docs := []models.FileDoc{{Filename: "a.go", Documentation: "### a.go\ndoc\n"}}

	static := a.StaticSections(docs)
	all := a.Sections(docs)

	assert.Equal(t, static, all[:len(static)])
	assert.Equal(t, "### a.go\ndoc\n\n\n", all[len(static)])
}
