package services

import (
	"context"
	"strings"
	"testing"

	"github.com/kendall-kelly/chatwidget-api/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func publicKeys(objects map[string][]byte) []string {
	var keys []string
	for k := range objects {
		if !strings.Contains(k, ".staging") {
			keys = append(keys, k)
		}
	}
	return keys
}

func stagingKeys(objects map[string][]byte) []string {
	var keys []string
	for k := range objects {
		if strings.Contains(k, ".staging") {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestS3ArtifactStore_PublishesUnderPrefix(t *testing.T) {
	mock := NewMockS3Service()
	store := NewS3ArtifactStore(mock, "/iframes/", nil)

	err := store.Write(context.Background(), "cw-1", generator.ArtifactSet{Markup: "<html>", Script: "js", Style: "css"})
	require.NoError(t, err)

	objects := mock.Objects()
	assert.ElementsMatch(t, []string{"iframes/cw-1.html", "iframes/cw-1.js", "iframes/cw-1.css"}, publicKeys(objects))
	assert.Empty(t, stagingKeys(objects), "staging objects are removed")
	assert.Equal(t, "<html>", string(objects["iframes/cw-1.html"]))
	assert.Equal(t, "text/css; charset=utf-8", mock.ContentType("iframes/cw-1.css"))
	assert.Equal(t, "iframes/cw-1.js", store.Key("cw-1", generator.KindScript))
}

func TestS3ArtifactStore_StagingFailureKeepsPublishedSet(t *testing.T) {
	mock := NewMockS3Service()
	store := NewS3ArtifactStore(mock, "iframes", nil)
	require.NoError(t, store.Write(context.Background(), "cw-1", generator.ArtifactSet{Markup: "old", Script: "old", Style: "old"}))

	mock.FailOn["put"] = "cw-1.html"
	err := store.Write(context.Background(), "cw-1", generator.ArtifactSet{Markup: "new", Script: "new", Style: "new"})
	require.Error(t, err)
	assert.Equal(t, generator.CodeArtifactWriteFailure, generator.CodeOf(err))
	assert.True(t, generator.IsRetryable(err))

	objects := mock.Objects()
	assert.Empty(t, stagingKeys(objects))
	for _, key := range publicKeys(objects) {
		assert.Equal(t, "old", string(objects[key]), key)
	}
}

func TestS3ArtifactStore_MarkupIsPublishedLast(t *testing.T) {
	mock := NewMockS3Service()
	store := NewS3ArtifactStore(mock, "iframes", nil)
	require.NoError(t, store.Write(context.Background(), "cw-1", generator.ArtifactSet{Markup: "old", Script: "old", Style: "old"}))

	mock.FailOn["copy"] = "iframes/cw-1.js"
	err := store.Write(context.Background(), "cw-1", generator.ArtifactSet{Markup: "new", Script: "new", Style: "new"})
	require.Error(t, err)
	assert.Equal(t, generator.CodeArtifactWriteFailure, generator.CodeOf(err))

	objects := mock.Objects()
	assert.Equal(t, "old", string(objects["iframes/cw-1.html"]), "markup is never published ahead of its script")
	assert.Empty(t, stagingKeys(objects))
}

func TestS3ArtifactStore_CleanupFailureDoesNotFailWrite(t *testing.T) {
	mock := NewMockS3Service()
	mock.FailOn["delete"] = ".staging"
	store := NewS3ArtifactStore(mock, "iframes", nil)

	err := store.Write(context.Background(), "cw-1", generator.ArtifactSet{Markup: "a", Script: "b", Style: "c"})
	require.NoError(t, err)
	assert.Len(t, publicKeys(mock.Objects()), 3)
}
