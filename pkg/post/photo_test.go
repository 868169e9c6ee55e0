package post

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singlePhotoSet(t *testing.T, id int64, title, url string) *PhotoSet {
	t.Helper()

	payload := fmt.Sprintf(`{
		"id": %d, "type": "photo", "date": "d", "caption": %q,
		"photos": [{"original_size": {"url": %q, "width": 1280, "height": 853}}]
	}`, id, title, url)

	ps, err := ParsePhotoSet(decodePost(t, payload), Blog{Name: "example"})
	require.NoError(t, err)
	require.Len(t, ps.Photos, 1)
	return ps
}

func tripleSet(t *testing.T, id int64, title string) *PhotoSet {
	t.Helper()

	payload := fmt.Sprintf(`{
		"id": %d, "type": "photo", "date": "d", "caption": %q,
		"photos": [%s, %s, %s]
	}`, id, title,
		photoRecord("https://media.example/1.jpg", 500),
		photoRecord("https://media.example/2.jpg", 500),
		photoRecord("https://media.example/3.jpg", 500))

	ps, err := ParsePhotoSet(decodePost(t, payload), Blog{Name: "example"})
	require.NoError(t, err)
	require.Len(t, ps.Photos, 3)
	return ps
}

func TestResolvePathSinglePhotoAllToggles(t *testing.T) {
	ps := singlePhotoSet(t, 42, "Sunset", "https://media.example/photo.jpg")

	ctx := PathContext{SaveRoot: "/out", ByUser: true, ByPostType: true, ByPhotoset: true}
	path, notes, err := ps.Photos[0].ResolvePath(ctx)
	require.NoError(t, err)

	// No photoset-id segment: the lone photo is not paginated.
	assert.Equal(t, "/out/example/photos/Sunset.jpg", path)
	assert.Equal(t, "Sunset", notes[AnnotationCaption])
	assert.NotContains(t, notes, AnnotationPhotosetPage)
}

func TestResolvePathPaginatedPhotoset(t *testing.T) {
	ps := tripleSet(t, 42, "Trip")

	ctx := PathContext{SaveRoot: "/out", ByUser: true, ByPostType: true, ByPhotoset: true}
	path, notes, err := ps.Photos[1].ResolvePath(ctx)
	require.NoError(t, err)

	assert.Equal(t, "/out/example/photos/42/p2_Trip.jpg", path)
	assert.Equal(t, "Trip", notes[AnnotationCaption])
	assert.Equal(t, "2 / 3", notes[AnnotationPhotosetPage])
}

func TestResolvePathDeterministic(t *testing.T) {
	ps := tripleSet(t, 42, "Trip")
	ctx := PathContext{SaveRoot: "/out", ByUser: true, ByPostType: true, ByPhotoset: true}

	first, _, err := ps.Photos[0].ResolvePath(ctx)
	require.NoError(t, err)
	second, _, err := ps.Photos[0].ResolvePath(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolvePathTogglesAreIndependent(t *testing.T) {
	ps := singlePhotoSet(t, 42, "Sunset", "https://media.example/photo.jpg")

	tests := []struct {
		name string
		ctx  PathContext
		want string
	}{
		{
			name: "all toggles off",
			ctx:  PathContext{SaveRoot: "/out"},
			want: "/out/Sunset.jpg",
		},
		{
			name: "only by user adds exactly one segment",
			ctx:  PathContext{SaveRoot: "/out", ByUser: true},
			want: "/out/example/Sunset.jpg",
		},
		{
			name: "only by post type",
			ctx:  PathContext{SaveRoot: "/out", ByPostType: true},
			want: "/out/photos/Sunset.jpg",
		},
		{
			name: "by photoset has no effect on a non-paginated photo",
			ctx:  PathContext{SaveRoot: "/out", ByPhotoset: true},
			want: "/out/Sunset.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, _, err := ps.Photos[0].ResolvePath(tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, path)
		})
	}
}

func TestResolvePathPreservesExtension(t *testing.T) {
	tests := []struct {
		url string
		ext string
	}{
		{"https://media.example/photo.jpg", ".jpg"},
		{"https://media.example/anim.gif", ".gif"},
		{"https://media.example/shout.PNG", ".PNG"},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			ps := singlePhotoSet(t, 1, "Title", tt.url)
			path, _, err := ps.Photos[0].ResolvePath(PathContext{SaveRoot: "/out"})
			require.NoError(t, err)
			assert.Equal(t, "/out/Title"+tt.ext, path)
		})
	}
}

func TestResolvePathUnsetTitleFails(t *testing.T) {
	payload := `{
		"id": 7, "type": "photo", "date": "d",
		"photos": [{"original_size": {"url": "https://media.example/a.jpg", "width": 10}}]
	}`
	ps, err := ParsePhotoSet(decodePost(t, payload), Blog{Name: "example"})
	require.NoError(t, err)
	require.Nil(t, ps.Title)

	_, _, err = ps.Photos[0].ResolvePath(PathContext{SaveRoot: "/out"})
	require.Error(t, err)
	assert.True(t, IsType(err, ErrorTypeUnresolvedTitle))
}

func TestResolvePathTitleSanitizedAway(t *testing.T) {
	// A title of nothing but reserved characters must not produce an
	// empty path segment.
	ps := singlePhotoSet(t, 7, "///", "https://media.example/a.jpg")

	_, _, err := ps.Photos[0].ResolvePath(PathContext{SaveRoot: "/out"})
	require.Error(t, err)
	assert.True(t, IsType(err, ErrorTypeUnresolvedTitle))
}

func TestResolvePathWithoutOwnerFails(t *testing.T) {
	p := &Photo{}

	_, _, err := p.ResolvePath(PathContext{SaveRoot: "/out"})
	require.Error(t, err)
	assert.True(t, IsType(err, ErrorTypeInvalidOwner))
}

func TestResolvePathSanitizesSegments(t *testing.T) {
	ps := singlePhotoSet(t, 42, "a/b: c", "https://media.example/a.jpg")
	ps.Blog.Name = "we/ird"

	path, _, err := ps.Photos[0].ResolvePath(PathContext{SaveRoot: "/out", ByUser: true})
	require.NoError(t, err)
	assert.Equal(t, "/out/weird/ab c.jpg", path)
}
