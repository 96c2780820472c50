package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"contentadmin/internal/content"
	"contentadmin/internal/resource"
	"contentadmin/internal/ui/textutil"
)

// Screens builds the resource screens. Each screen gets its own manager.
type Screens struct {
	Ctx       context.Context
	Transport content.Transport
	PageSize  int
	Notifier  resource.Notifier
	Logger    *zap.Logger
	// Now is used for relative timestamps; defaults to time.Now.
	Now func() time.Time
}

func (s *Screens) managerOpts() []resource.Option {
	opts := []resource.Option{resource.WithPageSize(s.PageSize)}
	if s.Notifier != nil {
		opts = append(opts, resource.WithNotifier(s.Notifier))
	}
	if s.Logger != nil {
		opts = append(opts, resource.WithLogger(s.Logger))
	}
	return opts
}

func (s *Screens) since(t time.Time) string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return textutil.Since(t, now())
}

var entryFields = []FieldSpec{
	{Key: "title", Label: "Title", Placeholder: "Milk Sweets"},
	{Key: "slug", Label: "Slug", Placeholder: "milk-sweets", SlugOf: "title"},
	{Key: "description", Label: "Description", Kind: FieldTextArea},
	{Key: "coverImage", Label: "Cover image", Placeholder: "path to a local image", Kind: FieldFile},
}

// Categories returns the category list. Enter opens the category's
// subcategories.
func (s *Screens) Categories() *ResourceView[content.Category, content.CategoryInput] {
	client := content.NewCategoryClient(s.Transport, content.WithLogger(s.Logger))
	mgr := resource.NewManager[content.Category, content.CategoryInput](client, content.CategoryLabels, s.managerOpts()...)
	cfg := ResourceConfig[content.Category, content.CategoryInput]{
		Source: "categories",
		Title:  "Categories",
		Labels: content.CategoryLabels,
		Columns: []Column[content.Category]{
			{Title: "Title", Width: 24, Value: func(c content.Category) string { return c.Title }},
			{Title: "Slug", Width: 22, Value: func(c content.Category) string { return c.Slug }},
			{Title: "Description", Width: 40, Value: func(c content.Category) string { return c.Description }},
			{Title: "Updated", Width: 12, Value: func(c content.Category) string { return s.since(c.UpdatedAt) }},
		},
		Form: FormAdapter[content.Category, content.CategoryInput]{
			Fields: entryFields,
			FromItem: func(c content.Category) map[string]string {
				return map[string]string{"title": c.Title, "slug": c.Slug, "description": c.Description}
			},
			ToPayload: func(v map[string]string) (content.CategoryInput, error) {
				return content.CategoryInput{
					Title:       v["title"],
					Slug:        v["slug"],
					Description: v["description"],
					CoverImage:  v["coverImage"],
				}, nil
			},
		},
		Name:   func(c content.Category) string { return c.Title },
		Filter: content.FilterByTitle,
		OnEnter: func(c content.Category) (View, AppMode) {
			return s.SubCategories(c), ModeSubCategories
		},
	}
	return NewResourceView[content.Category, content.CategoryInput](s.Ctx, cfg, mgr, client)
}

// SubCategories returns the subcategory list of one category.
func (s *Screens) SubCategories(parent content.Category) *ResourceView[content.SubCategory, content.SubCategoryInput] {
	client := content.NewSubCategoryClient(s.Transport, parent.ID, content.WithLogger(s.Logger))
	mgr := resource.NewManager[content.SubCategory, content.SubCategoryInput](client, content.SubCategoryLabels, s.managerOpts()...)
	cfg := ResourceConfig[content.SubCategory, content.SubCategoryInput]{
		Source: "subcategories:" + parent.ID,
		Title:  "Categories › " + parent.Title,
		Labels: content.SubCategoryLabels,
		Columns: []Column[content.SubCategory]{
			{Title: "Title", Width: 24, Value: func(c content.SubCategory) string { return c.Title }},
			{Title: "Slug", Width: 22, Value: func(c content.SubCategory) string { return c.Slug }},
			{Title: "Description", Width: 40, Value: func(c content.SubCategory) string { return c.Description }},
			{Title: "Updated", Width: 12, Value: func(c content.SubCategory) string { return s.since(c.UpdatedAt) }},
		},
		Form: FormAdapter[content.SubCategory, content.SubCategoryInput]{
			Fields: entryFields,
			FromItem: func(c content.SubCategory) map[string]string {
				return map[string]string{"title": c.Title, "slug": c.Slug, "description": c.Description}
			},
			ToPayload: func(v map[string]string) (content.SubCategoryInput, error) {
				return content.SubCategoryInput{
					CategoryID:  parent.ID,
					Title:       v["title"],
					Slug:        v["slug"],
					Description: v["description"],
					CoverImage:  v["coverImage"],
				}, nil
			},
		},
		Name:  func(c content.SubCategory) string { return c.Title },
		Child: true,
	}
	return NewResourceView[content.SubCategory, content.SubCategoryInput](s.Ctx, cfg, mgr, client)
}

// Blogs returns the blog post list.
func (s *Screens) Blogs() *ResourceView[content.Blog, content.BlogInput] {
	client := content.NewBlogClient(s.Transport, content.WithLogger(s.Logger))
	mgr := resource.NewManager[content.Blog, content.BlogInput](client, content.BlogLabels, s.managerOpts()...)
	cfg := ResourceConfig[content.Blog, content.BlogInput]{
		Source: "blogs",
		Title:  "Blogs",
		Labels: content.BlogLabels,
		Columns: []Column[content.Blog]{
			{Title: "#", Width: 4, Value: func(b content.Blog) string { return strconv.Itoa(b.SortOrder) }},
			{Title: "Title", Width: 28, Value: func(b content.Blog) string { return b.Title }},
			{Title: "Excerpt", Width: 40, Value: func(b content.Blog) string { return content.PlainText(b.Excerpt) }},
			{Title: "Read", Width: 7, Value: func(b content.Blog) string { return strconv.Itoa(b.EstimatedReadTime) + " min" }},
			{Title: "Updated", Width: 12, Value: func(b content.Blog) string { return s.since(b.UpdatedAt) }},
		},
		Form: FormAdapter[content.Blog, content.BlogInput]{
			Fields: []FieldSpec{
				{Key: "title", Label: "Title", Placeholder: "Diwali specials"},
				{Key: "slug", Label: "Slug", SlugOf: "title"},
				{Key: "excerpt", Label: "Excerpt", Placeholder: "One line summary"},
				{Key: "description", Label: "Description (HTML)", Kind: FieldTextArea},
				{Key: "estimatedReadTime", Label: "Read time (minutes)", Kind: FieldNumber},
				{Key: "coverImage", Label: "Cover image", Placeholder: "path to a local image", Kind: FieldFile},
			},
			Defaults: map[string]string{"estimatedReadTime": strconv.Itoa(content.DefaultReadTime)},
			FromItem: func(b content.Blog) map[string]string {
				return map[string]string{
					"title":             b.Title,
					"slug":              b.Slug,
					"excerpt":           b.Excerpt,
					"description":       b.Description,
					"estimatedReadTime": strconv.Itoa(b.EstimatedReadTime),
				}
			},
			ToPayload: blogPayload,
		},
		Name: func(b content.Blog) string { return b.Title },
	}
	return NewResourceView[content.Blog, content.BlogInput](s.Ctx, cfg, mgr, client)
}

func blogPayload(v map[string]string) (content.BlogInput, error) {
	in := content.BlogInput{
		Title:       v["title"],
		Slug:        v["slug"],
		Excerpt:     v["excerpt"],
		Description: v["description"],
		CoverImage:  v["coverImage"],
	}
	raw := strings.TrimSpace(v["estimatedReadTime"])
	if raw == "" {
		in.EstimatedReadTime = content.DefaultReadTime
		return in, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return in, resource.ValidationError("", map[string]string{"estimatedReadTime": "Read time must be a whole number of minutes"})
	}
	in.EstimatedReadTime = n
	return in, nil
}
