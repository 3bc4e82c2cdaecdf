// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package artifact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/go-a2a/llmkernel/artifact"
	"github.com/go-a2a/llmkernel/types"
)

func TestToPartRendersTextArtifactAsText(t *testing.T) {
	art := types.Artifact{Type: types.ArtifactText, MimeType: "text/plain"}
	part := artifact.ToPart(art, []byte("hello"))
	assert.Equal(t, "hello", part.Text)
	assert.Nil(t, part.InlineData)
}

func TestToPartRendersBinaryArtifactAsInlineData(t *testing.T) {
	art := types.Artifact{Type: types.ArtifactImage, MimeType: "image/png"}
	part := artifact.ToPart(art, []byte{0x89, 0x50})
	require.NotNil(t, part.InlineData)
	assert.Equal(t, "image/png", part.InlineData.MIMEType)
	assert.Equal(t, []byte{0x89, 0x50}, part.InlineData.Data)
}

func TestFromPartRoundTripsTextAndInlineData(t *testing.T) {
	payload, mime, typ, err := artifact.FromPart(&genai.Part{Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), payload)
	assert.Equal(t, "text/plain", mime)
	assert.Equal(t, types.ArtifactText, typ)

	payload, mime, typ, err = artifact.FromPart(&genai.Part{
		InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte{1, 2, 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, payload)
	assert.Equal(t, "image/jpeg", mime)
	assert.Equal(t, types.ArtifactImage, typ)
}

func TestFromPartRejectsEmptyPart(t *testing.T) {
	_, _, _, err := artifact.FromPart(&genai.Part{})
	assert.Error(t, err)

	_, _, _, err = artifact.FromPart(nil)
	assert.Error(t, err)
}
