package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	stored  map[string][]byte
	urlErr  error
	deleted []string
}

func (f *fakeObjects) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.stored[key] = b
	return nil
}

func (f *fakeObjects) URL(_ context.Context, key string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "/files/" + key, nil
}

func (f *fakeObjects) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	delete(f.stored, key)
	return nil
}

func uploadRequest(t *testing.T) *http.Request {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", "doc.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func TestUploadRemovesObjectWhenURLFails(t *testing.T) {
	objects := &fakeObjects{stored: map[string][]byte{}, urlErr: errors.New("no url")}
	h := NewUploadHandler(objects)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(uploadRequest(t), rec)
	require.NoError(t, h.Upload(c))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, objects.deleted, 1)
	assert.Empty(t, objects.stored)
}

func TestUploadKeepsObjectOnSuccess(t *testing.T) {
	objects := &fakeObjects{stored: map[string][]byte{}}
	h := NewUploadHandler(objects)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(uploadRequest(t), rec)
	require.NoError(t, h.Upload(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, objects.deleted)
	assert.Len(t, objects.stored, 1)
}

type fakeSigner struct{}

func (fakeSigner) SignedURL(_ context.Context, key string) (string, error) {
	return "https://objects.local/uploads/" + key + "?X-Amz-Expires=900", nil
}

func TestRedirectToSignedURL(t *testing.T) {
	e := echo.New()
	e.GET("/uploads/:key", Redirect(fakeSigner{}))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/abc_doc.pdf", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://objects.local/uploads/abc_doc.pdf?X-Amz-Expires=900", rec.Header().Get(echo.HeaderLocation))
}

func TestRedirectRejectsPathKeys(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("key")
	c.SetParamValues("../secret")

	require.NoError(t, Redirect(fakeSigner{})(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
