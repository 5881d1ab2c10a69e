package handlers

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

// 1x1 transparent PNG
var tinyPNG, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

func uploadRequest(t *testing.T, token string, field string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "upload.bin")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", "/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestImageUploadDisabled(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("alice")

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, uploadRequest(t, token, "image", tinyPNG))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestImageUpload(t *testing.T) {
	s := newTestServer(t)
	up := &fakeUploader{}
	s.app.Images = up
	token := s.signup("alice")

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, uploadRequest(t, token, "image", tinyPNG))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["url"] != "http://images.local/img.png" {
		t.Errorf("url = %q", resp["url"])
	}
	if up.contentType != "image/png" {
		t.Errorf("content type = %q", up.contentType)
	}
}

func TestImageUploadRejects(t *testing.T) {
	s := newTestServer(t)
	s.app.Images = &fakeUploader{}
	token := s.signup("alice")

	cases := map[string]*http.Request{
		"not an image":  uploadRequest(t, token, "image", []byte("plain text, not a picture")),
		"missing field": uploadRequest(t, token, "file", tinyPNG),
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
