package answer_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virtualta/internal/answer"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestDecodeImage(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(pngHeader)

	tests := []struct {
		name     string
		input    string
		wantNil  bool
		wantErr  bool
		wantMIME string
	}{
		{name: "Empty", input: "", wantNil: true},
		{name: "Plain Base64 PNG", input: encoded, wantMIME: "image/png"},
		{name: "Data URI", input: "data:image/png;base64," + encoded, wantMIME: "image/png"},
		{name: "Unpadded", input: base64.RawStdEncoding.EncodeToString(pngHeader), wantMIME: "image/png"},
		{name: "Unknown Bytes Default To JPEG", input: base64.StdEncoding.EncodeToString([]byte("hello")), wantMIME: "image/jpeg"},
		{name: "Invalid", input: "!!not base64!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := answer.DecodeImage(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, answer.ErrInvalidImage)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, img)
				return
			}
			require.NotNil(t, img)
			assert.Equal(t, tt.wantMIME, img.MIMEType)
		})
	}
}

func TestImage_Encodings(t *testing.T) {
	img := &answer.Image{Data: pngHeader, MIMEType: "image/png"}
	assert.Equal(t, "png", img.Format())
	assert.Equal(t, "data:image/png;base64,"+base64.StdEncoding.EncodeToString(pngHeader), img.DataURI())
}
