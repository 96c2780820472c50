// Package content defines the site's content entities (categories,
// subcategories and blog posts), their input payloads and the REST clients
// that speak the content API's wire contract.
package content

import (
	"encoding/json"
	"time"
)

// Category is a top-level grouping of products.
type Category struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CoverImage  string    `json:"coverImage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (c Category) ResourceID() string { return c.ID }

func (c *Category) UnmarshalJSON(b []byte) error {
	type plain Category
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*c = Category(aux.plain)
	if c.ID == "" {
		c.ID = aux.AltID
	}
	return nil
}

// SubCategory belongs to exactly one Category.
type SubCategory struct {
	ID          string    `json:"_id"`
	CategoryID  string    `json:"categoryId"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CoverImage  string    `json:"coverImage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s SubCategory) ResourceID() string { return s.ID }

// UnmarshalJSON accepts "id" for "_id" and a populated category object in
// place of the categoryId string.
func (s *SubCategory) UnmarshalJSON(b []byte) error {
	type plain SubCategory
	var aux struct {
		plain
		AltID      string          `json:"id"`
		CategoryID json.RawMessage `json:"categoryId"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*s = SubCategory(aux.plain)
	if s.ID == "" {
		s.ID = aux.AltID
	}
	s.CategoryID = refID(aux.CategoryID)
	return nil
}

// Blog is a published article.
type Blog struct {
	ID                string    `json:"_id"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	CoverImage        string    `json:"coverImage"`
	Excerpt           string    `json:"excerpt"`
	Description       string    `json:"description"`
	SortOrder         int       `json:"sortOrder"`
	EstimatedReadTime int       `json:"estimatedReadTime"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (b Blog) ResourceID() string { return b.ID }

func (b *Blog) UnmarshalJSON(data []byte) error {
	type plain Blog
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = Blog(aux.plain)
	if b.ID == "" {
		b.ID = aux.AltID
	}
	return nil
}

// refID reads a reference that is either an id string or an object with _id.
func refID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		ID    string `json:"_id"`
		AltID string `json:"id"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.ID != "" {
			return obj.ID
		}
		return obj.AltID
	}
	return ""
}
