package media_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khiva-consulting/backoffice-api/internal/media"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bare key", in: "passport_image/aziz-karimov.jpg", want: "/media/passport_image/aziz-karimov.jpg"},
		{name: "leading slash", in: "/passport_image/aziz-karimov.jpg", want: "/media/passport_image/aziz-karimov.jpg"},
		{name: "already normalized", in: "/media/visa_image/aziz_482913.png", want: "/media/visa_image/aziz_482913.png"},
		{name: "media prefix without slash", in: "media/visa_image/aziz_482913.png", want: "/media/visa_image/aziz_482913.png"},
		{name: "backslashes", in: "passport_image\\aziz.jpg", want: "/media/passport_image/aziz.jpg"},
		{name: "absolute url passes through", in: "https://cdn.example.com/a.jpg", want: "https://cdn.example.com/a.jpg"},
		{name: "whitespace only", in: "   ", want: ""},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, media.NormalizePath(tt.in))
		})
	}
}

func TestNormalizePath_Fixpoint(t *testing.T) {
	once := media.NormalizePath("completed_contract_image/aziz_123456.jpg")
	assert.Equal(t, once, media.NormalizePath(once))
}

func TestNormalizePaths_DropsEmpty(t *testing.T) {
	got := media.NormalizePaths([]string{"a.jpg", "", "  ", "b.jpg"})
	assert.Equal(t, []string{"/media/a.jpg", "/media/b.jpg"}, got)
}

func TestStorageKey(t *testing.T) {
	assert.Equal(t, "passport_image/aziz.jpg", media.StorageKey("/media/passport_image/aziz.jpg"))
	assert.Equal(t, "passport_image/aziz.jpg", media.StorageKey("passport_image/aziz.jpg"))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "simple name", in: "Aziz Karimov", want: "aziz-karimov"},
		{name: "collapses separators", in: "  Aziz__Karimov--Olimovich ", want: "aziz-karimov-olimovich"},
		{name: "digits kept", in: "Client 42", want: "client-42"},
		{name: "non-ascii dropped", in: "Ғани", want: ""},
		{name: "trailing separator trimmed", in: "Aziz.", want: "aziz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, media.Slugify(tt.in))
		})
	}
}

func TestDecodeDataURL(t *testing.T) {
	// "hi" in base64 is aGk=
	data, ext, err := media.DecodeDataURL("data:image/png;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)
	assert.Equal(t, ".png", ext)

	data, ext, err = media.DecodeDataURL("data:image/jpeg;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)
	assert.Equal(t, ".jpg", ext)

	// bare base64 without a data url header defaults to jpg
	data, ext, err = media.DecodeDataURL("aGk=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), data)
	assert.Equal(t, ".jpg", ext)

	_, _, err = media.DecodeDataURL("data:image/png,no-base64-marker")
	require.Error(t, err)

	_, _, err = media.DecodeDataURL("data:image/png;base64,!!!not-base64!!!")
	require.Error(t, err)
}

func TestIsDataURL(t *testing.T) {
	assert.True(t, media.IsDataURL("data:image/png;base64,aGk="))
	assert.False(t, media.IsDataURL("/media/passport_image/aziz.jpg"))
}

func TestContentTypeForExt(t *testing.T) {
	assert.Equal(t, "image/jpeg", media.ContentTypeForExt(".jpg"))
	assert.Equal(t, "image/jpeg", media.ContentTypeForExt("jpeg"))
	assert.Equal(t, "image/png", media.ContentTypeForExt(".PNG"))
	assert.Equal(t, "application/octet-stream", media.ContentTypeForExt(".pdf"))
}
