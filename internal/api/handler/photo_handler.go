package handler

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
)

// PhotoFiles resolves photo keys to files on local disk.
type PhotoFiles interface {
	Path(key string) (string, error)
}

// PhotoHandler serves photos stored by the local photo host. Stored files
// carry no extension, so the content type is sniffed from their bytes.
type PhotoHandler struct {
	files PhotoFiles
}

func NewPhotoHandler(files PhotoFiles) *PhotoHandler {
	return &PhotoHandler{files: files}
}

// Serve handles GET /uploads/*.
func (h *PhotoHandler) Serve(c echo.Context) error {
	// The key is taken from the decoded path; the wildcard parameter may
	// still be percent-encoded when the request carries a RawPath.
	prefix := strings.TrimSuffix(c.Path(), "*")
	p, err := h.files.Path(strings.TrimPrefix(c.Request().URL.Path, prefix))
	if err != nil {
		return echo.ErrNotFound
	}

	mtype, err := mimetype.DetectFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return echo.ErrNotFound
		}
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, mtype.String())
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.File(p)
}
