package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
)

const maxImageBytes = 5 << 20

func (a *App) ImageUpload(w http.ResponseWriter, r *http.Request) {
	if a.Images == nil {
		writeDetail(w, "Image uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+(1<<20))
	file, _, err := r.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, validationError{"Image is too large"})
			return
		}
		writeError(w, validationError{"Missing image file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		writeError(w, err)
		return
	}
	if len(data) > maxImageBytes {
		writeError(w, validationError{"Image is too large"})
		return
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		writeError(w, validationError{"File is not an image"})
		return
	}
	ext := ""
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		ext = exts[0]
	}

	url, err := a.Images.Upload(r.Context(), ext, contentType, data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"url": url}, http.StatusOK)
}
