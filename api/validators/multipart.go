package validators

import (
	"mime/multipart"
	"net/http"
	"strings"

	pkgerrors "github.com/spicepalace/spicepalace-backend/pkg/errors"
)

// maxMultipartMemory bounds the in-memory portion of a product form; larger
// file parts spill to temp files.
const maxMultipartMemory = 10 << 20

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ParseMultipartForm parses a product form submission.
func ParseMultipartForm(r *http.Request) error {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormFile returns the named upload, or (nil, nil, nil) when the field was
// omitted. The caller owns closing the returned file.
func FormFile(r *http.Request, field string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload")
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[strings.ToLower(contentType)] {
		file.Close()
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type").
			WithDetails(map[string]any{"contentType": contentType})
	}
	return file, header, nil
}

// FormValue trims the named field; ok reports whether it was present at all,
// so callers can distinguish "absent" from "cleared".
func FormValue(r *http.Request, field string) (string, bool) {
	if r.MultipartForm == nil || r.MultipartForm.Value == nil {
		return "", false
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}
