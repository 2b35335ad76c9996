package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	for _, name := range []string{"klook", "kkday", "myrealtrip", "getyourguide"} {
		d, err := ByName(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, d.Name)
	}

	d, err := ByName(" Klook ")
	require.NoError(t, err)
	assert.Equal(t, "klook", d.Name)

	_, err = ByName("expedia")
	assert.Error(t, err)
}

func TestDescriptorsComplete(t *testing.T) {
	for _, d := range All() {
		assert.NotEmpty(t, d.BaseURL, d.Name)
		assert.NotEmpty(t, d.SearchPath, d.Name)
		assert.NotEmpty(t, d.ProductCards, d.Name)
		assert.NotEmpty(t, d.AllowedQueryKeys, d.Name)
		assert.NotNil(t, d.ProductIDRegex, d.Name)
		require.Contains(t, d.Fields, FieldTitle, d.Name)
		require.Contains(t, d.Fields, FieldPrice, d.Name)
		assert.Contains(t, d.Tabs, "all", d.Name)
	}
}

func TestSearchURL(t *testing.T) {
	d := Klook()
	assert.Equal(t,
		"https://www.klook.com/search/result/?query=Chiang+Mai&page=1",
		d.SearchURL("Chiang Mai"))
}

func TestResolveURL(t *testing.T) {
	d := Klook()

	testCases := []struct {
		href     string
		expected string
	}{
		{"/activity/1234-tour", "https://www.klook.com/activity/1234-tour"},
		{"//www.klook.com/activity/1234", "https://www.klook.com/activity/1234"},
		{"https://other.com/x", "https://other.com/x"},
		{"", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.expected, d.ResolveURL(tc.href))
	}
}

func TestProductID(t *testing.T) {
	d := Klook()
	id, ok := d.ProductID("https://www.klook.com/activity/1234-seoul-tower")
	require.True(t, ok)
	assert.Equal(t, "1234", id)

	_, ok = d.ProductID("https://www.klook.com/city/seoul")
	assert.False(t, ok)

	gyg := GetYourGuide()
	id, ok = gyg.ProductID("https://www.getyourguide.com/seoul-l235/palace-tour-t98765")
	require.True(t, ok)
	assert.Equal(t, "98765", id)
}

func TestTabNamesAllFirst(t *testing.T) {
	d := KKday()
	tabs := d.TabNames()
	require.NotEmpty(t, tabs)
	assert.Equal(t, "all", tabs[0])
	assert.Len(t, tabs, len(d.Tabs))
}
