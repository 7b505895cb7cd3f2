package photo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photogallery/internal/flash"
	"photogallery/internal/web"
)

func newTestRouter(t *testing.T, service *Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	templates, err := web.Templates()
	require.NoError(t, err)
	router.SetHTMLTemplate(templates)

	RegisterRoutes(router, service, flash.NewStore("test-secret"), 12)
	return router
}

type filePart struct {
	filename    string
	contentType string
	content     []byte
}

func multipartRequest(t *testing.T, target string, parts []filePart, description string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, part := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, part.filename))
		header.Set("Content-Type", part.contentType)
		field, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = field.Write(part.content)
		require.NoError(t, err)
	}
	if description != "" {
		require.NoError(t, writer.WriteField("description", description))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAPIUploadNoFileProvided(t *testing.T) {
	service := NewService(newFakeRepo(), newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "No file provided", resp["error"])
}

func TestAPIUploadValidPNG(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	req := multipartRequest(t, "/api/upload", []filePart{
		{filename: "photo.png", contentType: "image/png", content: []byte("png bytes")},
	}, "test shot")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Message string `json:"message"`
		Photo   Photo  `json:"photo"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "File uploaded successfully", resp.Message)
	assert.Equal(t, "photo.png", resp.Photo.OriginalFilename)
	assert.Equal(t, int64(len("png bytes")), resp.Photo.FileSize)
	assert.Len(t, repo.records, 1)
}

func TestAPIUploadInvalidExtension(t *testing.T) {
	service := NewService(newFakeRepo(), newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	req := multipartRequest(t, "/api/upload", []filePart{
		{filename: "malware.exe", contentType: "application/octet-stream", content: []byte("mz")},
	}, "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Invalid file type", resp["error"])
}

func TestAPIPhotosListsAllNewestFirst(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	_, err := service.Upload(context.Background(), buildFileHeader(t, "photo", "first.png", "image/png", []byte("1")), "")
	require.NoError(t, err)
	second, err := service.Upload(context.Background(), buildFileHeader(t, "photo", "second.png", "image/png", []byte("22")), "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/photos", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var photos []Photo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &photos))
	require.Len(t, photos, 2)
	assert.Equal(t, second.ID, photos[0].ID)
	assert.Equal(t, "second.png", photos[0].OriginalFilename)
}

func TestAPIPhotosEmptyStoreReturnsArray(t *testing.T) {
	service := NewService(newFakeRepo(), newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/api/photos", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestFormUploadAcceptsValidSkipsInvalid(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	req := multipartRequest(t, "/upload", []filePart{
		{filename: "a.jpg", contentType: "image/jpeg", content: bytes.Repeat([]byte("x"), 500)},
		{filename: "b.txt", contentType: "text/plain", content: []byte("nope")},
	}, "")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/gallery", rr.Header().Get("Location"))
	assert.Len(t, repo.records, 1)
}

func TestFormUploadWithoutFileFieldRedirectsBack(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("description", "only text"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/upload", rr.Header().Get("Location"))
	assert.Empty(t, repo.records)
}

func TestGalleryRendersStoredPhotos(t *testing.T) {
	service := NewService(newFakeRepo(), newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	stored, err := service.Upload(context.Background(), buildFileHeader(t, "photo", "visible.png", "image/png", []byte("data")), "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/gallery", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), stored.Filename)
	assert.Contains(t, rr.Body.String(), "visible.png")
}

func TestViewPhotoUnknownIDReturns404(t *testing.T) {
	service := NewService(newFakeRepo(), newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	req := httptest.NewRequest(http.MethodGet, "/photo/424242", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeletePhotoRemovesRecord(t *testing.T) {
	repo := newFakeRepo()
	service := NewService(repo, newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	stored, err := service.Upload(context.Background(), buildFileHeader(t, "photo", "bye.png", "image/png", []byte("data")), "")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/photo/%d/delete", stored.ID), nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/gallery", rr.Header().Get("Location"))
	assert.Empty(t, repo.records)
}

func TestDeleteUnknownPhotoReturns404(t *testing.T) {
	service := NewService(newFakeRepo(), newFakeFileStore(), testUploadConfig(), nil)
	router := newTestRouter(t, service)

	req := httptest.NewRequest(http.MethodPost, "/photo/424242/delete", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
