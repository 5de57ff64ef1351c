package form

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/folio-dash/folio-backend/internal/projects/domain"
)

func decodePayload(t *testing.T, raw string) Payload {
	t.Helper()
	var p Payload
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func editableDraft() *Draft {
	desc := "Portfolio"
	site := "https://folio.example"
	cover := "https://example.com/b.png"
	return DraftFrom(domain.Project{
		Name:          "Folio",
		Description:   &desc,
		Category:      "Web",
		Status:        domain.StatusInProgress,
		Priority:      domain.PriorityHigh,
		Progress:      40,
		ImageURL:      []string{"https://example.com/a.png", cover, "https://example.com/c.png"},
		CoverImageURL: &cover,
		WebsiteURL:    &site,
		Technologies:  []string{"Go", "Postgres", "Redis"},
		Featured:      true,
	})
}

func TestApply_NullClearsAbsentKeeps(t *testing.T) {
	d := editableDraft()

	err := d.Apply(decodePayload(t, `{"description":null,"websiteUrl":null,"progress":55}`))
	require.NoError(t, err)

	assert.Empty(t, d.Description)
	assert.Empty(t, d.WebsiteURL)
	assert.Equal(t, 55, d.Progress)
	assert.Equal(t, "Folio", d.Name)
	assert.Equal(t, domain.PriorityHigh, d.Priority)
	assert.True(t, d.Featured)
	assert.Len(t, d.ImageURLs, 3)

	u := d.Update()
	require.True(t, u.Description.Set)
	assert.Nil(t, u.Description.Value, "cleared text is stored as null")
	assert.Nil(t, u.WebsiteURL.Value)
}

func TestApply_ListReplacementNormalizes(t *testing.T) {
	d := editableDraft()

	err := d.Apply(decodePayload(t, `{"technologies":[" Go ","","Kafka"],"imageUrl":["https://example.com/a.png","  "]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Go", "Kafka"}, d.Technologies)
	assert.Equal(t, []string{"https://example.com/a.png"}, d.ImageURLs)
	assert.Empty(t, d.CoverImageURL, "cover dropped from the list is cleared")

	require.NoError(t, d.Apply(decodePayload(t, `{"technologies":null}`)))
	assert.Equal(t, []string{}, d.Technologies)
}

func TestApply_RemovesByIndex(t *testing.T) {
	d := editableDraft()

	err := d.Apply(decodePayload(t, `{"removeTechnologies":[2,0,2],"removeImages":[1]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"Postgres"}, d.Technologies)
	assert.Equal(t, []string{"https://example.com/a.png", "https://example.com/c.png"}, d.ImageURLs)
	assert.Empty(t, d.CoverImageURL, "removing the cover image clears the cover")

	err = d.Apply(decodePayload(t, `{"removeImages":[7]}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestApply_Cover(t *testing.T) {
	d := editableDraft()

	err := d.Apply(decodePayload(t, `{"coverImageUrl":"https://example.com/elsewhere.png"}`))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "https://example.com/b.png", d.CoverImageURL)

	require.NoError(t, d.Apply(decodePayload(t, `{"coverImageUrl":" https://example.com/c.png "}`)))
	assert.Equal(t, "https://example.com/c.png", d.CoverImageURL)

	require.NoError(t, d.Apply(decodePayload(t, `{"coverImageUrl":null}`)))
	assert.Empty(t, d.CoverImageURL)

	require.NoError(t, d.Apply(decodePayload(t, `{"imageUrl":["https://example.com/new.png"],"coverImageUrl":"https://example.com/new.png"}`)))
	assert.Equal(t, "https://example.com/new.png", d.CoverImageURL)
}

func TestSkip(t *testing.T) {
	d := NewDraft()
	d.Stage(
		NewFile("keep.png", "image/png", pngHeader),
		NewFile("drop.png", "image/png", pngHeader),
	)

	assert.Equal(t, 1, d.Skip([]string{"drop.png", "missing.png"}))
	require.Len(t, d.Staged(), 1)
	assert.Equal(t, "keep.png", d.Staged()[0].File.Name)
	assert.Zero(t, d.Skip(nil))
}
