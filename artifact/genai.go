// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"google.golang.org/genai"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/types"
)

// ToPart renders an artifact's payload as a *genai.Part, letting a script
// execution host hand a loaded artifact straight to a model request
// without re-deriving the MIME type or content classification. Text
// artifacts become a text Part; everything else becomes inline data.
func ToPart(art types.Artifact, payload []byte) *genai.Part {
	if art.Type == types.ArtifactText {
		return &genai.Part{Text: string(payload)}
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: art.MimeType,
			Data:     payload,
		},
	}
}

// FromPart extracts the payload and MIME type a Manager.Store call needs
// from a *genai.Part produced by a model response, so a tool or agent can
// persist model output as an artifact in one step.
func FromPart(part *genai.Part) (payload []byte, mimeType string, artType types.ArtifactType, err error) {
	switch {
	case part == nil:
		return nil, "", 0, kernelerr.New(kernelerr.Validation, errNilPart)
	case part.Text != "":
		return []byte(part.Text), "text/plain", types.ArtifactText, nil
	case part.InlineData != nil:
		t := types.ArtifactBinary
		if isImageMIME(part.InlineData.MIMEType) {
			t = types.ArtifactImage
		}
		return part.InlineData.Data, part.InlineData.MIMEType, t, nil
	default:
		return nil, "", 0, kernelerr.New(kernelerr.Validation, errUnsupportedPart)
	}
}

func isImageMIME(mime string) bool {
	return len(mime) >= 6 && mime[:6] == "image/"
}

type partError string

func (e partError) Error() string { return string(e) }

const (
	errNilPart         partError = "artifact: nil genai.Part"
	errUnsupportedPart partError = "artifact: genai.Part has neither Text nor InlineData"
)
