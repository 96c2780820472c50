package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentadmin/internal/resource"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/v1/creative", opts...)
	require.NoError(t, err)
	return c
}

func TestDo_ResolvesPathAndQuery(t *testing.T) {
	var gotPath, gotQuery, gotID, gotAuth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotID = r.Header.Get(RequestIDHeader)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}, WithTokenSource(func() string { return "tok" }))

	resp, err := c.Get(context.Background(), "category/get-all-categories",
		WithQuery(url.Values{"page": {"2"}, "limit": {"10"}}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "/api/v1/creative/category/get-all-categories", gotPath)
	assert.Equal(t, "limit=10&page=2", gotQuery)
	assert.Len(t, gotID, 36)
	assert.Equal(t, "Bearer tok", gotAuth)

	var body map[string]bool
	require.NoError(t, resp.Decode(&body))
	assert.True(t, body["ok"])
}

func TestDo_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   resource.Kind
		fields map[string]string
		msg    string
	}{
		{"unauthorized", 401, `{"message":"Token expired"}`, resource.KindUnauthorized, nil, "Token expired"},
		{"forbidden", 403, `{}`, resource.KindUnauthorized, nil, "Forbidden"},
		{"not found", 404, `{"msg":"Category not found"}`, resource.KindNotFound, nil, "Category not found"},
		{"validation object", 400, `{"message":"Invalid","errors":{"title":"required"}}`, resource.KindValidation, map[string]string{"title": "required"}, "Invalid"},
		{"validation list", 422, `{"errors":[{"path":"slug","msg":"taken"}]}`, resource.KindValidation, map[string]string{"slug": "taken"}, "Unprocessable Entity"},
		{"bad request without fields", 400, `{"message":"nope"}`, resource.KindServer, nil, "nope"},
		{"server", 503, `not json`, resource.KindServer, nil, "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Delete(context.Background(), "category/delete-category/1")
			require.Error(t, err)
			var ce *resource.ClientError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.kind, ce.Kind)
			assert.Equal(t, tt.fields, ce.Fields)
			assert.Equal(t, tt.msg, ce.Message)
			if tt.kind == resource.KindServer {
				assert.Equal(t, tt.status, ce.Status)
			}
		})
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(base)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "blog/get-all-blogs")
	assert.True(t, resource.IsKind(err, resource.KindNetwork))
}

func TestDo_JSONBody(t *testing.T) {
	var ct string
	var got map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	})
	_, err := c.Post(context.Background(), "auth/signin", JSON(map[string]string{"email": "a@b.co"}))
	require.NoError(t, err)
	assert.Equal(t, "application/json", ct)
	assert.Equal(t, "a@b.co", got["email"])
}

func TestDo_MultipartBody(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "cover.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	require.NoError(t, os.WriteFile(img, png, 0o644))

	var title, fileName, fileType string
	var fileBytes []byte
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		title = r.FormValue("title")
		f, hdr, err := r.FormFile("coverImage")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer f.Close()
		fileName = hdr.Filename
		fileType = hdr.Header.Get("Content-Type")
		fileBytes, _ = io.ReadAll(f)
		w.WriteHeader(http.StatusCreated)
	})

	form := (&Form{}).Set("title", "Sweets").Attach("coverImage", img)
	_, err := c.Put(context.Background(), "category/update-category/1", Multipart(form))
	require.NoError(t, err)
	assert.Equal(t, "Sweets", title)
	assert.Equal(t, "cover.png", fileName)
	assert.Equal(t, "image/png", fileType)
	assert.Equal(t, png, fileBytes)
}

func TestDo_MissingAttachmentIsFieldError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	form := (&Form{}).Attach("coverImage", filepath.Join(t.TempDir(), "missing.png"))
	_, err := c.Post(context.Background(), "category/create-category", Multipart(form))
	require.True(t, resource.IsValidation(err), "got %v", err)
	assert.Equal(t, "File not found: missing.png", resource.FieldErrors(err)["coverImage"])
}

func TestFormBody(t *testing.T) {
	var contentType string
	var decoded map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if contentType == "application/json" {
			_ = json.NewDecoder(r.Body).Decode(&decoded)
		}
	})

	form := (&Form{}).Set("title", "Sweets").Set("title", "ignored").SetInt("estimatedReadTime", 7)
	_, err := c.Put(context.Background(), "blog/update-blog/1", FormBody(form))
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, map[string]interface{}{"title": "Sweets", "estimatedReadTime": float64(7)}, decoded)

	img := filepath.Join(t.TempDir(), "cover.png")
	require.NoError(t, os.WriteFile(img, []byte("\x89PNG\r\n\x1a\n"), 0o644))
	form.Attach("coverImage", img)
	_, err = c.Put(context.Background(), "blog/update-blog/1", FormBody(form))
	require.NoError(t, err)
	assert.Contains(t, contentType, "multipart/form-data")
}

func TestCookieJar(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/creative/auth/signin" {
			http.SetCookie(w, &http.Cookie{Name: "accessToken", Value: "abc", Path: "/"})
			return
		}
		ck, err := r.Cookie("accessToken")
		if err != nil || ck.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	ctx := context.Background()
	_, err := c.Post(ctx, "auth/signin", JSON(map[string]string{}))
	require.NoError(t, err)
	assert.Equal(t, "abc", c.Cookie("accessToken"))

	_, err = c.Get(ctx, "blog/get-all-blogs")
	require.NoError(t, err)

	c.ClearCookies()
	_, err = c.Get(ctx, "blog/get-all-blogs")
	assert.True(t, resource.IsUnauthorized(err))
}

func TestRateLimitHonorsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {}, WithRateLimit(0.001, 1))
	ctx := context.Background()
	_, err := c.Get(ctx, "x")
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = c.Get(cancelled, "x")
	assert.True(t, resource.IsKind(err, resource.KindNetwork))
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New("/api")
	assert.Error(t, err)
}
