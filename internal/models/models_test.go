package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgeSet_NoDuplicates(t *testing.T) {
	var set BadgeSet
	require.NoError(t, json.Unmarshal([]byte(`["it","layout","it"]`), &set))

	assert.True(t, set.Has(BadgeIT))
	assert.True(t, set.Has(BadgeLayout))
	assert.False(t, set.Has(BadgeSocialMedia))
	assert.Equal(t, []string{"it", "layout"}, set.List())

	out, err := json.Marshal(set.Add(BadgeIT).Add(BadgeSocialMedia))
	require.NoError(t, err)
	assert.JSONEq(t, `["it","layout","social-media"]`, string(out))
}

func TestBadgeSet_RejectsUnknown(t *testing.T) {
	_, err := NewBadgeSet("it", "karaoke")
	assert.Error(t, err)

	var set BadgeSet
	assert.Error(t, json.Unmarshal([]byte(`["karaoke"]`), &set))
}

func TestBadgeSet_SQLRoundTrip(t *testing.T) {
	set, err := NewBadgeSet("social-media", "layout")
	require.NoError(t, err)

	v, err := set.Value()
	require.NoError(t, err)

	var back BadgeSet
	require.NoError(t, back.Scan([]byte(v.(string))))
	assert.Equal(t, set, back)
}

func TestPoll_IsOpen(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&Poll{Active: true}).IsOpen(now))
	assert.True(t, (&Poll{Active: true, EndsAt: &future}).IsOpen(now))
	assert.False(t, (&Poll{Active: true, EndsAt: &past}).IsOpen(now))
	assert.False(t, (&Poll{Active: false}).IsOpen(now))

	p := &Poll{Options: []string{"Ja", "Nein"}}
	assert.True(t, p.HasOption("Nein"))
	assert.False(t, p.HasOption("Vielleicht"))
}

func TestJSONColumns_ScanNull(t *testing.T) {
	var gallery GalleryImages
	assert.NoError(t, gallery.Scan(nil))
	assert.Nil(t, gallery)

	var votes Votes
	require.NoError(t, votes.Scan([]byte(`{"Ja":2,"Nein":1}`)))
	assert.Equal(t, Votes{"Ja": 2, "Nein": 1}, votes)

	assert.Error(t, votes.Scan(42))
}
