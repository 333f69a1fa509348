package keys

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyFor(t *testing.T) {
	l := New("metadata")

	assert.Equal(t, "metadata/pub/pkg/_v/latest/datapackage.json", l.KeyFor("pub", "pkg", "", DescriptorFile))
	assert.Equal(t, "metadata/pub/pkg/_v/v1/data/a.csv", l.KeyFor("pub", "pkg", "v1", "data/a.csv"))
}

func TestPrefixes(t *testing.T) {
	l := New("/metadata/")

	assert.Equal(t, "metadata/pub/pkg/_v/latest/", l.PrefixFor("pub", "pkg", ""))
	assert.Equal(t, "metadata/pub/pkg/_v/tag_one/", l.PrefixFor("pub", "pkg", "tag_one"))
	assert.Equal(t, "metadata/pub/pkg/", l.PackagePrefix("pub", "pkg"))
	assert.Equal(t, "metadata/pub/", l.PublisherPrefix("pub"))
}

func TestDefaultPrefix(t *testing.T) {
	assert.Equal(t, "metadata/p/", New("").PublisherPrefix("p"))
	assert.Equal(t, "metadata/p/", Layout{}.PublisherPrefix("p"))
}

func TestParseRoundTrip(t *testing.T) {
	l := New("metadata")
	cases := []Location{
		{Publisher: "pub", Package: "pkg", Tag: "latest", Resource: "datapackage.json"},
		{Publisher: "pub", Package: "pkg", Tag: "1.0", Resource: "README.md"},
		{Publisher: "a-b", Package: "c_d", Tag: "x", Resource: "nested/dir/data.csv"},
	}

	for _, want := range cases {
		got, err := l.Parse(l.KeyFor(want.Publisher, want.Package, want.Tag, want.Resource))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseEmptyTagRoundTripsToLatest(t *testing.T) {
	l := New("metadata")
	got, err := l.Parse(l.KeyFor("pub", "pkg", "", "r"))
	require.NoError(t, err)
	assert.Equal(t, LatestTag, got.Tag)
}

func TestParseRejectsMalformedKeys(t *testing.T) {
	l := New("metadata")
	for _, key := range []string{
		"other/pub/pkg/_v/latest/r",
		"metadata/pub/pkg/latest/r",
		"metadata/pub/pkg/_v/latest",
		"metadata/pub/pkg/_v/latest/",
		"metadata//pkg/_v/latest/r",
	} {
		_, err := l.Parse(key)
		assert.True(t, errors.Is(err, ErrMalformedKey), key)
	}
}

func TestValidSegment(t *testing.T) {
	assert.True(t, ValidSegment("pkg"))
	assert.False(t, ValidSegment(""))
	assert.False(t, ValidSegment("a/b"))
	assert.False(t, ValidSegment("_v"))
}

func TestValidResource(t *testing.T) {
	assert.True(t, ValidResource("data.csv"))
	assert.True(t, ValidResource("data/part-1.csv"))
	assert.False(t, ValidResource(""))
	assert.False(t, ValidResource("/abs.csv"))
	assert.False(t, ValidResource("../other/_v/latest/x"))
	assert.False(t, ValidResource("a//b"))
}
