package docs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dash/folio-backend/internal/docs/toc"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLibrary_LoadsMarkdownAndHTML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "getting-started.md", "---\ntitle: Getting Started\norder: 1\n---\n# Install\n\nText.\n\n## Configure\n\n# Install\n")
	writeFile(t, dir, "guides/projects.html", `<h1>Projects</h1><h2 id="forms">Forms</h2><h3>§</h3>`)
	writeFile(t, dir, "notes.txt", "ignored")
	writeFile(t, dir, ".hidden/secret.md", "# Secret")

	lib := NewLibrary(dir, nil)
	require.NoError(t, lib.Reload())

	pages := lib.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, PageInfo{Slug: "guides-projects", Title: "Projects", Order: 0}, pages[0])
	assert.Equal(t, PageInfo{Slug: "getting-started", Title: "Getting Started", Order: 1}, pages[1])

	p, ok := lib.Page("getting-started")
	require.True(t, ok)
	assert.Equal(t, []toc.Heading{
		{ID: "install", Text: "Install", Level: 1},
		{ID: "configure", Text: "Configure", Level: 2},
		{ID: "install-1", Text: "Install", Level: 1},
	}, p.Headings)
	assert.Contains(t, p.HTML, `<h1 id="install">Install</h1>`)
	assert.Contains(t, p.HTML, `<h1 id="install-1">Install</h1>`)
	assert.NotContains(t, p.HTML, "<body>")

	p, ok = lib.Page("guides-projects")
	require.True(t, ok)
	assert.Equal(t, []toc.Heading{
		{ID: "projects", Text: "Projects", Level: 1},
		{ID: "forms", Text: "Forms", Level: 2},
	}, p.Headings)

	_, ok = lib.Page("hidden-secret")
	assert.False(t, ok)
}

func TestLibrary_ReloadReplacesPages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "# A")

	lib := NewLibrary(dir, nil)
	require.NoError(t, lib.Reload())
	_, ok := lib.Page("a")
	require.True(t, ok)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.md")))
	writeFile(t, dir, "b.md", "# B")
	require.NoError(t, lib.Reload())

	_, ok = lib.Page("a")
	assert.False(t, ok)
	_, ok = lib.Page("b")
	assert.True(t, ok)
}

func TestLibrary_BadFrontmatterSkipsPage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.md", "---\ntitle: [unclosed\n---\n# Broken")
	writeFile(t, dir, "fine.md", "# Fine")

	lib := NewLibrary(dir, nil)
	require.NoError(t, lib.Reload())

	_, ok := lib.Page("broken")
	assert.False(t, ok)
	_, ok = lib.Page("fine")
	assert.True(t, ok)
}

func TestLibrary_MissingDir(t *testing.T) {
	lib := NewLibrary(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, lib.Reload())
}

func TestSplitFrontmatter(t *testing.T) {
	fm, body, err := splitFrontmatter("---\ntitle: Hello\norder: 3\n---\n\n# Body")
	require.NoError(t, err)
	assert.Equal(t, frontmatter{Title: "Hello", Order: 3}, fm)
	assert.Equal(t, "# Body", body)

	fm, body, err = splitFrontmatter("# No frontmatter")
	require.NoError(t, err)
	assert.Equal(t, frontmatter{}, fm)
	assert.Equal(t, "# No frontmatter", body)

	_, _, err = splitFrontmatter("---\ntitle: open")
	assert.Error(t, err)
}
