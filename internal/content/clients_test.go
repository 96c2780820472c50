package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentadmin/internal/apiclient"
	"contentadmin/internal/resource"
)

// recorded is what the fake server saw for the last request.
type recorded struct {
	method      string
	path        string
	query       string
	contentType string
	form        map[string]string
	files       map[string]string
}

func fakeAPI(t *testing.T, respond func(r *http.Request) (int, string)) (*apiclient.Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.form = map[string]string{}
		rec.files = map[string]string{}
		rec.contentType = r.Header.Get("Content-Type")
		if rec.contentType == "application/json" {
			var obj map[string]interface{}
			if err := json.NewDecoder(r.Body).Decode(&obj); err == nil {
				for k, v := range obj {
					rec.form[k] = fmt.Sprint(v)
				}
			}
		} else if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				rec.form[k] = v[0]
			}
			for k, v := range r.MultipartForm.File {
				rec.files[k] = v[0].Filename
			}
		}
		status, body := respond(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	c, err := apiclient.New(srv.URL + "/api/v1/creative")
	require.NoError(t, err)
	return c, rec
}

func TestCategoryClient_List(t *testing.T) {
	api, rec := fakeAPI(t, func(r *http.Request) (int, string) {
		return 200, `{"status":"success","data":{"categories":[
			{"_id":"c1","title":"Sweets","slug":"sweets"},
			{"_id":"c2","title":"Snacks","slug":"snacks"}
		],"total":12,"totalPages":6,"page":2,"limit":2}}`
	})
	p, err := NewCategoryClient(api).List(context.Background(), 2, 2)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/creative/category/get-all-categories", rec.path)
	assert.Equal(t, "limit=2&page=2", rec.query)
	assert.Len(t, p.Items, 2)
	assert.Equal(t, "c1", p.Items[0].ID)
	assert.Equal(t, 12, p.TotalItems)
	assert.Equal(t, 6, p.Metadata().TotalPages)
}

func TestCategoryClient_ListWithoutTotal(t *testing.T) {
	api, _ := fakeAPI(t, func(r *http.Request) (int, string) {
		return 200, `{"data":{"categories":[{"id":"c9","title":"Only"}]}}`
	})
	p, err := NewCategoryClient(api).List(context.Background(), 3, 10)
	require.NoError(t, err)
	assert.Equal(t, "c9", p.Items[0].ID)
	assert.Equal(t, 21, p.TotalItems)
	assert.False(t, p.Metadata().HasNextPage)
}

func TestCategoryClient_ListTruncatesOversizedPage(t *testing.T) {
	api, _ := fakeAPI(t, func(r *http.Request) (int, string) {
		return 200, `{"data":{"categories":[{"_id":"1"},{"_id":"2"},{"_id":"3"}],"total":3}}`
	})
	p, err := NewCategoryClient(api).List(context.Background(), 1, 2)
	require.NoError(t, err)
	assert.Len(t, p.Items, 2)
}

func TestCategoryClient_ListMalformed(t *testing.T) {
	api, _ := fakeAPI(t, func(r *http.Request) (int, string) {
		return 200, `{"data":{"categories":"nope"}}`
	})
	_, err := NewCategoryClient(api).List(context.Background(), 1, 10)
	assert.True(t, resource.IsKind(err, resource.KindServer))
}

func TestCategoryClient_GetShapes(t *testing.T) {
	for _, body := range []string{
		`{"category":{"_id":"c1","title":"Sweets"}}`,
		`{"data":{"category":{"_id":"c1","title":"Sweets"}}}`,
		`{"data":{"_id":"c1","title":"Sweets"}}`,
	} {
		api, rec := fakeAPI(t, func(r *http.Request) (int, string) { return 200, body })
		c, err := NewCategoryClient(api).Get(context.Background(), "c1")
		require.NoError(t, err, body)
		assert.Equal(t, "/api/v1/creative/category/get-category/c1", rec.path)
		assert.Equal(t, Category{ID: "c1", Title: "Sweets"}, c)
	}
}

func TestCategoryClient_GetNotFound(t *testing.T) {
	api, _ := fakeAPI(t, func(r *http.Request) (int, string) {
		return 404, `{"msg":"Category not found"}`
	})
	_, err := NewCategoryClient(api).Get(context.Background(), "missing")
	assert.True(t, resource.IsNotFound(err))
}

func TestCategoryClient_CreateSendsMultipart(t *testing.T) {
	img := writePNG(t)
	api, rec := fakeAPI(t, func(r *http.Request) (int, string) {
		return 201, `{"data":{"_id":"new","title":"Sweets","slug":"sweets"}}`
	})
	c, err := NewCategoryClient(api).Create(context.Background(), CategoryInput{
		Title: "Sweets", Slug: "sweets", Description: "All sweets", CoverImage: img,
	})
	require.NoError(t, err)
	assert.Equal(t, "new", c.ID)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/creative/category/create-category", rec.path)
	assert.Equal(t, map[string]string{"title": "Sweets", "slug": "sweets", "description": "All sweets"}, rec.form)
	assert.Equal(t, map[string]string{"coverImage": "cover.png"}, rec.files)
	assert.Contains(t, rec.contentType, "multipart/form-data")
}

func TestCategoryClient_UpdateWithoutCoverSendsJSON(t *testing.T) {
	api, rec := fakeAPI(t, func(r *http.Request) (int, string) {
		return 200, `{"data":{"category":{"_id":"c1","title":"Sweets"}}}`
	})
	_, err := NewCategoryClient(api).Update(context.Background(), "c1", CategoryInput{
		Title: "Sweets", Slug: "sweets", Description: "All sweets",
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", rec.contentType)
	assert.Equal(t, map[string]string{"title": "Sweets", "slug": "sweets", "description": "All sweets"}, rec.form)
	assert.Empty(t, rec.files)
}

func TestCategoryClient_CreateValidatesLocally(t *testing.T) {
	calls := 0
	api, _ := fakeAPI(t, func(r *http.Request) (int, string) {
		calls++
		return 201, `{}`
	})
	_, err := NewCategoryClient(api).Create(context.Background(), CategoryInput{Slug: "Bad Slug!"})
	require.Error(t, err)
	fields := resource.FieldErrors(err)
	assert.Equal(t, "Title is required", fields["title"])
	assert.Contains(t, fields, "slug")
	assert.Contains(t, fields, "description")
	assert.Zero(t, calls)
}

func TestCategoryClient_UpdateAndDelete(t *testing.T) {
	api, rec := fakeAPI(t, func(r *http.Request) (int, string) {
		return 200, `{"message":"ok"}`
	})
	client := NewCategoryClient(api)
	_, err := client.Update(context.Background(), "c1", CategoryInput{Title: "T", Slug: "t", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/v1/creative/category/update-category/c1", rec.path)

	require.NoError(t, client.Delete(context.Background(), "c1"))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/v1/creative/category/delete-category/c1", rec.path)
}

func TestSubCategoryClient_ListSlicesClientSide(t *testing.T) {
	api, rec := fakeAPI(t, func(r *http.Request) (int, string) {
		return 200, `{"data":[
			{"_id":"s1","title":"A","categoryId":"c1"},
			{"_id":"s2","title":"B","categoryId":{"_id":"c1","title":"Sweets"}},
			{"_id":"s3","title":"C","categoryId":"c1"}
		]}`
	})
	p, err := NewSubCategoryClient(api, "c1").List(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/creative/subcategory/get-category-subcategories/c1", rec.path)
	assert.Equal(t, "categoryId=c1", rec.query)
	require.Len(t, p.Items, 1)
	assert.Equal(t, "s3", p.Items[0].ID)
	assert.Equal(t, 3, p.TotalItems)
}

func TestSubCategoryClient_ListNestedShapes(t *testing.T) {
	for _, body := range []string{
		`{"data":{"subCategories":[{"_id":"s1","categoryId":{"_id":"c1"}}]}}`,
		`{"data":{"data":[{"_id":"s1","categoryId":"c1"}]}}`,
	} {
		api, _ := fakeAPI(t, func(r *http.Request) (int, string) { return 200, body })
		p, err := NewSubCategoryClient(api, "c1").List(context.Background(), 1, 10)
		require.NoError(t, err, body)
		require.Len(t, p.Items, 1)
		assert.Equal(t, "c1", p.Items[0].CategoryID)
	}
}

func TestSubCategoryClient_CreateAddsCategory(t *testing.T) {
	img := writePNG(t)
	api, rec := fakeAPI(t, func(r *http.Request) (int, string) {
		return 201, `{"data":{"subCategory":{"_id":"s1","title":"Laddu"}}}`
	})
	s, err := NewSubCategoryClient(api, "c1").Create(context.Background(), SubCategoryInput{
		Title: "Laddu", Slug: "laddu", Description: "Round", CoverImage: img,
	})
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.Equal(t, "c1", rec.form["categoryId"])
	assert.Equal(t, "/api/v1/creative/subcategory/create-subcategory", rec.path)
}

func TestSubCategoryClient_CreateRequiresImage(t *testing.T) {
	api, _ := fakeAPI(t, func(r *http.Request) (int, string) { return 201, `{}` })
	_, err := NewSubCategoryClient(api, "c1").Create(context.Background(), SubCategoryInput{
		Title: "Laddu", Slug: "laddu", Description: "Round",
	})
	assert.Equal(t, map[string]string{"coverImage": "Please select a cover image"}, resource.FieldErrors(err))

	// Updates keep the existing image.
	_, err = NewSubCategoryClient(api, "c1").Update(context.Background(), "s1", SubCategoryInput{
		Title: "Laddu", Slug: "laddu", Description: "Round",
	})
	assert.NoError(t, err)
}

func TestBlogClient_ListAndGet(t *testing.T) {
	api, rec := fakeAPI(t, func(r *http.Request) (int, string) {
		if r.URL.Path == "/api/v1/creative/blog/get-blog/b1" {
			return 200, `{"status":"success","data":{"_id":"b1","title":"Hello","estimatedReadTime":7}}`
		}
		return 200, `{"data":{"blogs":[{"_id":"b1","title":"Hello"}],"total":"1","totalPages":1,"page":1,"limit":10}}`
	})
	client := NewBlogClient(api)
	p, err := client.List(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/creative/blog/get-all-blogs", rec.path)
	assert.Equal(t, 1, p.TotalItems)

	b, err := client.Get(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, 7, b.EstimatedReadTime)
}

func TestBlogClient_CreateSanitizes(t *testing.T) {
	api, rec := fakeAPI(t, func(r *http.Request) (int, string) { return 201, `{"data":{"_id":"b2"}}` })
	_, err := NewBlogClient(api).Create(context.Background(), BlogInput{
		Title:             "Hello",
		Slug:              "hello",
		Excerpt:           "Short",
		Description:       `<p>Body</p><script>alert(1)</script>`,
		EstimatedReadTime: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "<p>Body</p>", rec.form["description"])
	assert.Equal(t, "5", rec.form["estimatedReadTime"])
	assert.Empty(t, rec.files)
}

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cover.png")
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
	require.NoError(t, os.WriteFile(path, png, 0o644))
	return path
}
