package transport

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func multipartUpload(t *testing.T, srv *testServer, creator uuid.UUID, kind string, files map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if kind != "" {
		_ = mw.WriteField("kind", kind)
	}
	for name, content := range files {
		part, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		_, _ = part.Write([]byte(content))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/creator/uploads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, creator, "creator"))

	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestUpload_StoresFilesUnderCreatorPrefix(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()

	w := multipartUpload(t, srv, creator, "file", map[string]string{
		"guide.PDF": "pdf bytes",
		"bonus.zip": "zip bytes",
	})
	expectStatus(t, w, http.StatusCreated)

	resp := decode[UploadResponse](t, w)
	if len(resp.URLs) != 2 {
		t.Fatalf("expected 2 URLs, got %v", resp.URLs)
	}

	prefix := "/uploads/" + BucketProductFiles + "/" + creator.String() + "/"
	for _, url := range resp.URLs {
		if !strings.HasPrefix(url, prefix) {
			t.Errorf("URL %q outside the creator prefix", url)
		}
		onDisk := filepath.Join(srv.uploads, filepath.FromSlash(strings.TrimPrefix(url, "/uploads/")))
		if _, err := os.Stat(onDisk); err != nil {
			t.Errorf("uploaded file missing: %v", err)
		}
	}
}

func TestUpload_Thumbnail(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()

	w := multipartUpload(t, srv, creator, "thumbnail", map[string]string{"cover.png": "png"})
	expectStatus(t, w, http.StatusCreated)

	url := decode[UploadResponse](t, w).URLs[0]
	if !strings.Contains(url, "/"+BucketThumbnails+"/") || !strings.HasSuffix(url, ".png") {
		t.Errorf("unexpected thumbnail URL %q", url)
	}
}

func TestUpload_RejectsBadForms(t *testing.T) {
	srv := newTestServer(t)
	creator := uuid.New()

	expectStatus(t, multipartUpload(t, srv, creator, "avatar", map[string]string{"a.png": "x"}), http.StatusUnprocessableEntity)
	expectStatus(t, multipartUpload(t, srv, creator, "file", nil), http.StatusUnprocessableEntity)
	expectStatus(t, srv.do(http.MethodPost, "/api/creator/uploads", creator, map[string]string{"kind": "file"}), http.StatusBadRequest)
}
