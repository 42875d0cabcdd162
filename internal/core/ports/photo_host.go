package ports

import (
	"context"
	"io"
)

// PhotoHost stores images under a logical key and returns a durable URL.
// Uploading to an existing key overwrites the previous image.
type PhotoHost interface {
	UploadImage(ctx context.Context, key string, image io.Reader) (string, error)
}
