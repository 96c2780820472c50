package content

import (
	"contentadmin/internal/apiclient"
	"contentadmin/internal/validation"
)

// Payload is the body of a create or update request.
type Payload interface {
	// Validate checks the payload locally. creating is true for Create.
	Validate(creating bool) error
	// Form renders the request fields. It goes out as multipart when it
	// carries a file and as JSON otherwise.
	Form() *apiclient.Form
}

// CategoryInput creates or edits a Category. CoverImage is a local file path.
type CategoryInput struct {
	Title       string `json:"title" validate:"required,max=120"`
	Slug        string `json:"slug" validate:"required,max=140,slug"`
	Description string `json:"description" validate:"required,max=2000"`
	CoverImage  string `json:"-" form:"coverImage" validate:"omitempty,image"`
}

func (in CategoryInput) Validate(bool) error {
	return validation.Struct(in)
}

func (in CategoryInput) Form() *apiclient.Form {
	f := (&apiclient.Form{}).
		Set("title", in.Title).
		Set("slug", in.Slug).
		Set("description", in.Description)
	if in.CoverImage != "" {
		f.Attach("coverImage", in.CoverImage)
	}
	return f
}

// SubCategoryInput creates or edits a SubCategory. The client fills
// CategoryID from its scope.
type SubCategoryInput struct {
	CategoryID  string `json:"categoryId"`
	Title       string `json:"title" validate:"required,min=2,max=120"`
	Slug        string `json:"slug" validate:"required,min=2,max=140,slug"`
	Description string `json:"description" validate:"required,min=2,max=2000"`
	CoverImage  string `json:"-" form:"coverImage" validate:"omitempty,image"`
}

// Validate requires a cover image when creating.
func (in SubCategoryInput) Validate(creating bool) error {
	err := validation.Struct(in)
	if creating && in.CoverImage == "" {
		err = validation.Merge(err, map[string]string{"coverImage": "Please select a cover image"})
	}
	return err
}

func (in SubCategoryInput) Form() *apiclient.Form {
	f := (&apiclient.Form{}).
		Set("title", in.Title).
		Set("slug", in.Slug).
		Set("description", in.Description)
	if in.CoverImage != "" {
		f.Attach("coverImage", in.CoverImage)
	}
	if in.CategoryID != "" {
		f.Set("categoryId", in.CategoryID)
	}
	return f
}

// DefaultReadTime is the estimated read time, in minutes, of a new post.
const DefaultReadTime = 5

// BlogInput creates or edits a Blog. Description is HTML and is sanitized
// before it is sent.
type BlogInput struct {
	Title             string `json:"title" validate:"required,max=200"`
	Slug              string `json:"slug" validate:"required,max=220,slug"`
	Excerpt           string `json:"excerpt" validate:"required,max=500"`
	Description       string `json:"description" validate:"required"`
	EstimatedReadTime int    `json:"estimatedReadTime" validate:"min=1,max=240"`
	CoverImage        string `json:"-" form:"coverImage" validate:"omitempty,image"`
}

func (in BlogInput) Validate(bool) error {
	err := validation.Struct(in)
	if in.Description != "" && PlainText(SanitizeHTML(in.Description)) == "" {
		err = validation.Merge(err, map[string]string{"description": "Description is required"})
	}
	return err
}

func (in BlogInput) Form() *apiclient.Form {
	f := (&apiclient.Form{}).
		Set("title", in.Title).
		Set("slug", in.Slug).
		Set("excerpt", in.Excerpt).
		Set("description", SanitizeHTML(in.Description)).
		SetInt("estimatedReadTime", in.EstimatedReadTime)
	if in.CoverImage != "" {
		f.Attach("coverImage", in.CoverImage)
	}
	return f
}
