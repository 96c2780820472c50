package ui

// AppMode is the top-level screen the app is showing.
type AppMode int

const (
	ModeLogin AppMode = iota
	ModeCategories
	ModeSubCategories
	ModeBlogs
)

func (m AppMode) String() string {
	switch m {
	case ModeLogin:
		return "Login"
	case ModeCategories:
		return "Categories"
	case ModeSubCategories:
		return "Subcategories"
	case ModeBlogs:
		return "Blogs"
	default:
		return "Unknown"
	}
}

// protected reports whether the mode requires a signed-in session.
func (m AppMode) protected() bool {
	return m != ModeLogin
}
