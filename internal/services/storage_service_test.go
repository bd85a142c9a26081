package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportplatform/export-api/internal/testutil"
)

func TestUploadValidatesSizeAndType(t *testing.T) {
	store := testutil.NewStore()
	s := NewStorageServiceWithStore(store)
	ctx := context.Background()

	tests := []struct {
		name     string
		category string
		content  []byte
		wantErr  error
		wantMime string
	}{
		{"png logo", "logo", testutil.PNG, nil, "image/png"},
		{"jpeg gallery", "gallery", testutil.JPEG, nil, "image/jpeg"},
		{"pdf document", "documents", testutil.PDF, nil, "application/pdf"},
		{"plain text document", "documents", []byte("price list\nsedan 10000\n"), nil, "text/plain"},
		{"csv document", "documents", []byte("brand,price\nlada,10000\nuaz,15000\n"), nil, "text/csv"},
		{"html document", "documents", []byte("<!DOCTYPE html><html><body><script>alert(1)</script></body></html>"), ErrFileTypeRejected, ""},
		{"svg document", "documents", sampleSVG, ErrFileTypeRejected, ""},
		{"svg image", "gallery", sampleSVG, ErrFileTypeRejected, ""},
		{"pdf as image", "gallery", testutil.PDF, ErrFileTypeRejected, ""},
		{"binary document", "documents", testutil.ELF, ErrFileTypeRejected, ""},
		{"empty file", "logo", []byte{}, ErrFileRequired, ""},
		{"oversized image", "logo", append(append([]byte{}, testutil.PNG...), make([]byte, MaxImageSize)...), ErrFileTooLarge, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.UploadFile(ctx, testutil.FileHeader(t, "file", "upload.bin", tt.content), s.GetDefaultUploadOptions(tt.category))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMime, result.MimeType)
			assert.True(t, strings.HasPrefix(result.Key, s.GetDefaultUploadOptions(tt.category).Folder+"/"))
			assert.True(t, store.Has(result.Key))
			assert.Equal(t, "/uploads/"+result.Key, result.URL)
		})
	}
}

var sampleSVG = []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`)

func TestDocumentSizeLimit(t *testing.T) {
	s := NewStorageServiceWithStore(testutil.NewStore())
	opts := s.GetDefaultUploadOptions("documents")

	atLimit := append(append([]byte{}, testutil.PDF...), bytes.Repeat([]byte(" "), MaxDocumentSize-len(testutil.PDF))...)
	_, err := s.Upload(context.Background(), bytes.NewReader(atLimit), opts)
	assert.NoError(t, err)

	_, err = s.Upload(context.Background(), bytes.NewReader(append(atLimit, ' ')), opts)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads")
	ctx := context.Background()

	url, err := store.Put(ctx, "logos/a.png", "image/png", testutil.PNG)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/logos/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "logos", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, testutil.PNG, data)

	require.NoError(t, store.Delete(ctx, "logos/a.png"))
	_, err = os.Stat(filepath.Join(dir, "logos", "a.png"))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Put(ctx, "../escape.png", "image/png", testutil.PNG)
	assert.Error(t, err)
}
