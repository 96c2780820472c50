// Package mockapi is a local stand-in for the content API. It serves the
// same paths and envelopes as the hosted service, persists to SQLite and
// issues real JWT access tokens, so the dashboard can be run and tested
// without network access.
package mockapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"contentadmin/internal/auth"
	"contentadmin/internal/resource"
)

// BasePath is where the content routes are mounted.
const BasePath = "/api/v1/creative"

const (
	maxUploadBytes = 5 << 20
	maxPageSize    = 100
)

// Server serves the mock content API.
type Server struct {
	store  *Store
	tokens *Tokens
	logger *zap.Logger
}

func NewServer(store *Store, tokens *Tokens, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: store, tokens: tokens, logger: logger}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/uploads/{name}", s.serveUpload)

	r.Route(BasePath, func(r chi.Router) {
		r.Post("/auth/signin", s.signIn)
		r.Get("/users/logout", s.logout)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/category/get-all-categories", s.listCategories)
			r.Get("/category/get-category/{id}", s.getCategory)
			r.Post("/category/create-category", s.createCategory)
			r.Put("/category/update-category/{id}", s.updateCategory)
			r.Delete("/category/delete-category/{id}", s.deleteCategory)

			r.Get("/subcategory/get-category-subcategories/{categoryID}", s.listSubCategories)
			r.Get("/subcategory/get-subcategory/{id}", s.getSubCategory)
			r.Post("/subcategory/create-subcategory", s.createSubCategory)
			r.Put("/subcategory/update-subcategory/{id}", s.updateSubCategory)
			r.Delete("/subcategory/delete-subcategory/{id}", s.deleteSubCategory)

			r.Get("/blog/get-all-blogs", s.listBlogs)
			r.Get("/blog/get-blog/{id}", s.getBlog)
			r.Post("/blog/create-blog", s.createBlog)
			r.Put("/blog/update-blog/{id}", s.updateBlog)
			r.Delete("/blog/delete-blog/{id}", s.deleteBlog)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found")
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Response helpers

func writeJSON(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]interface{}{
		"status":  "error",
		"message": message,
	})
}

func writeFieldErrors(w http.ResponseWriter, code int, message string, fields map[string]string) {
	writeJSON(w, code, map[string]interface{}{
		"status":  "error",
		"message": message,
		"errors":  fields,
	})
}

func success(message string, data interface{}) map[string]interface{} {
	out := map[string]interface{}{"status": "success", "data": data}
	if message != "" {
		out["message"] = message
	}
	return out
}

// writeStoreError maps store errors onto the API's status codes.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, ErrDuplicateSlug):
		writeFieldErrors(w, http.StatusBadRequest, "Slug already exists", map[string]string{"slug": "Slug already exists"})
	case errors.Is(err, ErrUnknownCategory):
		writeFieldErrors(w, http.StatusBadRequest, "Category does not exist", map[string]string{"categoryId": "Category does not exist"})
	default:
		s.logger.Error("store failure", zap.String("resource", what), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeValidation writes a local validation error as a 422.
func writeValidation(w http.ResponseWriter, err error) {
	writeFieldErrors(w, http.StatusUnprocessableEntity, resource.Message(err), resource.FieldErrors(err))
}

// pageParams reads page and limit, defaulting to 1 and 10.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = resource.DefaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func pageEnvelope(key string, items interface{}, total, page, limit int) map[string]interface{} {
	return map[string]interface{}{
		key:          items,
		"total":      total,
		"totalPages": resource.Paginate(page, limit, total).TotalPages,
		"page":       page,
		"limit":      limit,
	}
}

// Auth

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(auth.TokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Please sign in")
			return
		}
		if _, err := s.tokens.Parse(token); err != nil {
			writeError(w, http.StatusUnauthorized, "Session expired, please sign in again")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var creds auth.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := s.store.UserByEmail(creds.Email)
	if err != nil || !CheckPassword(user.PasswordHash, creds.Password) {
		if err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Error("user lookup failed", zap.Error(err))
		}
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("token signing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, success("Signed in successfully", map[string]interface{}{
		"user": auth.User{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  auth.Role(user.Role),
		},
		"token": token,
	}))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, success("Signed out successfully", nil))
}

// Uploads

func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	mime, data, err := s.store.Upload(chi.URLParam(r, "name"))
	if err != nil {
		s.writeStoreError(w, err, "Upload")
		return
	}
	w.Header().Set("Content-Type", mime)
	_, _ = w.Write(data)
}

// coverImage stores the request's coverImage file, if any, and returns its
// public path. ok is false when a response has already been written.
func (s *Server) coverImage(w http.ResponseWriter, r *http.Request) (path string, ok bool) {
	if r.MultipartForm == nil {
		return "", true
	}
	f, _, err := r.FormFile("coverImage")
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cover image")
		return "", false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid cover image")
		return "", false
	}
	if len(data) > maxUploadBytes {
		writeFieldErrors(w, http.StatusBadRequest, "Cover image is too large",
			map[string]string{"coverImage": "Cover image must be at most 5 MB"})
		return "", false
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		writeFieldErrors(w, http.StatusBadRequest, "Cover image must be an image",
			map[string]string{"coverImage": "Cover image must be an image"})
		return "", false
	}
	name := newID() + mt.Extension()
	if err := s.store.SaveUpload(name, mt.String(), data); err != nil {
		s.logger.Error("saving upload failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return "", false
	}
	return "/uploads/" + name, true
}

// parseForm accepts multipart, JSON and urlencoded bodies. JSON fields end
// up in r.Form so handlers read every encoding the same way.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	var err error
	switch ct := r.Header.Get("Content-Type"); {
	case strings.HasPrefix(ct, "multipart/"):
		err = r.ParseMultipartForm(maxUploadBytes)
	case strings.HasPrefix(ct, "application/json"):
		err = parseJSONForm(r)
	default:
		err = r.ParseForm()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func parseJSONForm(r *http.Request) error {
	var obj map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxUploadBytes)).Decode(&obj); err != nil {
		return err
	}
	form := url.Values{}
	for k, v := range obj {
		switch v := v.(type) {
		case string:
			form.Set(k, v)
		case float64:
			form.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			form.Set(k, strconv.FormatBool(v))
		}
	}
	r.Form = form
	r.PostForm = form
	return nil
}
