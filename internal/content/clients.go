package content

import (
	"net/url"

	"contentadmin/internal/jsonutil"
	"contentadmin/internal/resource"
)

// Labels for notifications.
var (
	CategoryLabels    = resource.Labels{Singular: "Category", Plural: "categories"}
	SubCategoryLabels = resource.Labels{Singular: "Subcategory", Plural: "subcategories"}
	BlogLabels        = resource.Labels{Singular: "Blog", Plural: "blogs"}
)

// NewCategoryClient returns the client for /category.
func NewCategoryClient(t Transport, opts ...Option) *RESTClient[Category, CategoryInput] {
	return newRESTClient(t, contract[Category, CategoryInput]{
		name:      "category",
		listPath:  "category/get-all-categories",
		listQuery: pageQuery,
		decodeList: func(body []byte, page, limit int) (resource.Page[Category], error) {
			return decodeServerPage[Category](body, "categories", page, limit)
		},
		getPath:    func(id string) string { return "category/get-category/" + url.PathEscape(id) },
		createPath: "category/create-category",
		updatePath: func(id string) string { return "category/update-category/" + url.PathEscape(id) },
		deletePath: func(id string) string { return "category/delete-category/" + url.PathEscape(id) },
		onePaths:   []string{"category", "data.category", "data"},
	}, opts)
}

// NewSubCategoryClient returns the client for the subcategories of one
// category. The endpoint returns every subcategory at once; pages are cut
// client-side.
func NewSubCategoryClient(t Transport, categoryID string, opts ...Option) *RESTClient[SubCategory, SubCategoryInput] {
	return newRESTClient(t, contract[SubCategory, SubCategoryInput]{
		name:     "subcategory",
		listPath: "subcategory/get-category-subcategories/" + url.PathEscape(categoryID),
		listQuery: func(int, int) url.Values {
			return url.Values{"categoryId": {categoryID}}
		},
		decodeList: func(body []byte, page, limit int) (resource.Page[SubCategory], error) {
			raw, _, ok := jsonutil.FirstOf(body, "data.subCategories", "data.subcategories", "data.data", "data")
			if !ok {
				return resource.SlicePage([]SubCategory{}, page, limit), nil
			}
			all, err := jsonutil.UnmarshalArrayAllowEmpty[SubCategory](raw, "subcategories")
			if err != nil {
				return resource.Page[SubCategory]{}, err
			}
			return resource.SlicePage(all, page, limit), nil
		},
		getPath:    func(id string) string { return "subcategory/get-subcategory/" + url.PathEscape(id) },
		createPath: "subcategory/create-subcategory",
		updatePath: func(id string) string { return "subcategory/update-subcategory/" + url.PathEscape(id) },
		deletePath: func(id string) string { return "subcategory/delete-subcategory/" + url.PathEscape(id) },
		onePaths:   []string{"data.subCategory", "data.data", "data"},
		prepare: func(in SubCategoryInput) SubCategoryInput {
			in.CategoryID = categoryID
			return in
		},
	}, opts)
}

// NewBlogClient returns the client for /blog.
func NewBlogClient(t Transport, opts ...Option) *RESTClient[Blog, BlogInput] {
	return newRESTClient(t, contract[Blog, BlogInput]{
		name:      "blog",
		listPath:  "blog/get-all-blogs",
		listQuery: pageQuery,
		decodeList: func(body []byte, page, limit int) (resource.Page[Blog], error) {
			return decodeServerPage[Blog](body, "blogs", page, limit)
		},
		getPath:    func(id string) string { return "blog/get-blog/" + url.PathEscape(id) },
		createPath: "blog/create-blog",
		updatePath: func(id string) string { return "blog/update-blog/" + url.PathEscape(id) },
		deletePath: func(id string) string { return "blog/delete-blog/" + url.PathEscape(id) },
		onePaths:   []string{"data.data", "data.blog", "data"},
	}, opts)
}
