package mockapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"contentadmin/internal/content"
	"contentadmin/internal/validation"
)

// entryForm is the shared body of category and subcategory writes.
type entryForm struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=220,slug"`
	Description string `json:"description" validate:"required"`
}

type blogForm struct {
	Title             string `json:"title" validate:"required,max=200"`
	Slug              string `json:"slug" validate:"required,max=220,slug"`
	Excerpt           string `json:"excerpt" validate:"required,max=500"`
	Description       string `json:"description" validate:"required"`
	EstimatedReadTime int    `json:"estimatedReadTime" validate:"min=1,max=240"`
}

func readEntry(r *http.Request) entryForm {
	return entryForm{
		Title:       r.FormValue("title"),
		Slug:        r.FormValue("slug"),
		Description: r.FormValue("description"),
	}
}

func readBlog(r *http.Request) blogForm {
	minutes := content.DefaultReadTime
	if v := r.FormValue("estimatedReadTime"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			n = 0
		}
		minutes = n
	}
	return blogForm{
		Title:             r.FormValue("title"),
		Slug:              r.FormValue("slug"),
		Excerpt:           r.FormValue("excerpt"),
		Description:       content.SanitizeHTML(r.FormValue("description")),
		EstimatedReadTime: minutes,
	}
}

// Categories

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, total, err := s.store.ListCategories((page-1)*limit, limit)
	if err != nil {
		s.writeStoreError(w, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, success("", pageEnvelope("categories", items, total, page, limit)))
}

func (s *Server) getCategory(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCategory(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, success("", map[string]interface{}{"category": c}))
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	s.writeCategory(w, r, "")
}

func (s *Server) updateCategory(w http.ResponseWriter, r *http.Request) {
	s.writeCategory(w, r, chi.URLParam(r, "id"))
}

// writeCategory creates when id is empty and updates otherwise.
func (s *Server) writeCategory(w http.ResponseWriter, r *http.Request, id string) {
	if !parseForm(w, r) {
		return
	}
	form := readEntry(r)
	if err := validation.Struct(form); err != nil {
		writeValidation(w, err)
		return
	}
	cover, ok := s.coverImage(w, r)
	if !ok {
		return
	}
	c := &content.Category{ID: id, Title: form.Title, Slug: form.Slug, Description: form.Description, CoverImage: cover}
	if id == "" {
		if err := s.store.CreateCategory(c); err != nil {
			s.writeStoreError(w, err, "Category")
			return
		}
		writeJSON(w, http.StatusCreated, success("Category created successfully", map[string]interface{}{"category": c}))
		return
	}
	if err := s.store.UpdateCategory(c); err != nil {
		s.writeStoreError(w, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, success("Category updated successfully", map[string]interface{}{"category": c}))
}

func (s *Server) deleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err, "Category")
		return
	}
	writeJSON(w, http.StatusOK, success("Category deleted successfully", nil))
}

// Subcategories

func (s *Server) listSubCategories(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "categoryID")
	if _, err := s.store.GetCategory(categoryID); err != nil {
		s.writeStoreError(w, err, "Category")
		return
	}
	items, err := s.store.ListSubCategories(categoryID)
	if err != nil {
		s.writeStoreError(w, err, "Subcategory")
		return
	}
	writeJSON(w, http.StatusOK, success("", map[string]interface{}{"subCategories": items}))
}

func (s *Server) getSubCategory(w http.ResponseWriter, r *http.Request) {
	sc, err := s.store.GetSubCategory(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err, "Subcategory")
		return
	}
	writeJSON(w, http.StatusOK, success("", map[string]interface{}{"subCategory": sc}))
}

func (s *Server) createSubCategory(w http.ResponseWriter, r *http.Request) {
	s.writeSubCategory(w, r, "")
}

func (s *Server) updateSubCategory(w http.ResponseWriter, r *http.Request) {
	s.writeSubCategory(w, r, chi.URLParam(r, "id"))
}

func (s *Server) writeSubCategory(w http.ResponseWriter, r *http.Request, id string) {
	if !parseForm(w, r) {
		return
	}
	form := readEntry(r)
	categoryID := r.FormValue("categoryId")
	err := validation.Struct(form)
	if id == "" && categoryID == "" {
		err = validation.Merge(err, map[string]string{"categoryId": "Category is required"})
	}
	if err != nil {
		writeValidation(w, err)
		return
	}
	cover, ok := s.coverImage(w, r)
	if !ok {
		return
	}
	if id == "" && cover == "" {
		writeFieldErrors(w, http.StatusBadRequest, "Please select a cover image",
			map[string]string{"coverImage": "Please select a cover image"})
		return
	}
	sc := &content.SubCategory{
		ID:          id,
		CategoryID:  categoryID,
		Title:       form.Title,
		Slug:        form.Slug,
		Description: form.Description,
		CoverImage:  cover,
	}
	if id == "" {
		if err := s.store.CreateSubCategory(sc); err != nil {
			s.writeStoreError(w, err, "Subcategory")
			return
		}
		writeJSON(w, http.StatusCreated, success("Subcategory created successfully", map[string]interface{}{"subCategory": sc}))
		return
	}
	if err := s.store.UpdateSubCategory(sc); err != nil {
		s.writeStoreError(w, err, "Subcategory")
		return
	}
	writeJSON(w, http.StatusOK, success("Subcategory updated successfully", map[string]interface{}{"subCategory": sc}))
}

func (s *Server) deleteSubCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteSubCategory(chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err, "Subcategory")
		return
	}
	writeJSON(w, http.StatusOK, success("Subcategory deleted successfully", nil))
}

// Blogs

func (s *Server) listBlogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	items, total, err := s.store.ListBlogs((page-1)*limit, limit)
	if err != nil {
		s.writeStoreError(w, err, "Blog")
		return
	}
	writeJSON(w, http.StatusOK, success("", pageEnvelope("blogs", items, total, page, limit)))
}

func (s *Server) getBlog(w http.ResponseWriter, r *http.Request) {
	b, err := s.store.GetBlog(chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, err, "Blog")
		return
	}
	writeJSON(w, http.StatusOK, success("", map[string]interface{}{"blog": b}))
}

func (s *Server) createBlog(w http.ResponseWriter, r *http.Request) {
	s.writeBlog(w, r, "")
}

func (s *Server) updateBlog(w http.ResponseWriter, r *http.Request) {
	s.writeBlog(w, r, chi.URLParam(r, "id"))
}

func (s *Server) writeBlog(w http.ResponseWriter, r *http.Request, id string) {
	if !parseForm(w, r) {
		return
	}
	form := readBlog(r)
	if err := validation.Struct(form); err != nil {
		writeValidation(w, err)
		return
	}
	cover, ok := s.coverImage(w, r)
	if !ok {
		return
	}
	b := &content.Blog{
		ID:                id,
		Title:             form.Title,
		Slug:              form.Slug,
		Excerpt:           form.Excerpt,
		Description:       form.Description,
		EstimatedReadTime: form.EstimatedReadTime,
		CoverImage:        cover,
	}
	if id == "" {
		if err := s.store.CreateBlog(b); err != nil {
			s.writeStoreError(w, err, "Blog")
			return
		}
		writeJSON(w, http.StatusCreated, success("Blog created successfully", map[string]interface{}{"blog": b}))
		return
	}
	if err := s.store.UpdateBlog(b); err != nil {
		s.writeStoreError(w, err, "Blog")
		return
	}
	writeJSON(w, http.StatusOK, success("Blog updated successfully", map[string]interface{}{"blog": b}))
}

func (s *Server) deleteBlog(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteBlog(chi.URLParam(r, "id")); err != nil {
		s.writeStoreError(w, err, "Blog")
		return
	}
	writeJSON(w, http.StatusOK, success("Blog deleted successfully", nil))
}
