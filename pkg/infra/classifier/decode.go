package classifier

import (
	"bytes"
	"image"

	// registered formats for user gallery uploads
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rutaviva/contentgate/pkg/domain/moderation"
)

// Decode turns raw upload bytes into an image ready for inference.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, moderation.NewDecodeError(err)
	}
	return img, nil
}
