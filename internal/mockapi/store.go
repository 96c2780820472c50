package mockapi

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"contentadmin/internal/content"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateSlug is returned when a slug is already taken.
	ErrDuplicateSlug = errors.New("slug already exists")
	// ErrUnknownCategory is returned when a subcategory names a missing category.
	ErrUnknownCategory = errors.New("category does not exist")
)

// Store is the SQLite persistence behind the mock API.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// OpenStore opens (creating if needed) the database at path. ":memory:"
// gives a private in-memory database.
func OpenStore(path string) (*Store, error) {
	params := "?_foreign_keys=on&_busy_timeout=5000"
	if path != ":memory:" {
		params += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", path+params)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every in-memory connection is its own database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(2)
	}

	s := &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
	if err := s.initTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL UNIQUE,
			role TEXT NOT NULL,
			password_hash BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			cover_image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subcategories (
			id TEXT PRIMARY KEY,
			category_id TEXT NOT NULL,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT NOT NULL DEFAULT '',
			cover_image TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS blogs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			excerpt TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			cover_image TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			estimated_read_time INTEGER NOT NULL DEFAULT 5,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS uploads (
			name TEXT PRIMARY KEY,
			mime TEXT NOT NULL,
			data BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subcategories_category ON subcategories(category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_created ON categories(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_blogs_order ON blogs(sort_order, created_at DESC)`,
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

// mapErr converts driver errors into the store's sentinel errors.
func mapErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return ErrDuplicateSlug
		case sqlite3.ErrConstraintForeignKey:
			return ErrUnknownCategory
		}
	}
	return err
}

func newID() string {
	return uuid.NewString()
}

// User is an account allowed to sign in to the mock API.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         string
	PasswordHash []byte
	CreatedAt    time.Time
}

// UpsertUser creates the user or replaces its name, role and password.
func (s *Store) UpsertUser(u *User) error {
	if u.ID == "" {
		u.ID = newID()
	}
	u.CreatedAt = s.now()
	_, err := s.db.Exec(`
		INSERT INTO users (id, name, email, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			password_hash = excluded.password_hash`,
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.CreatedAt)
	return err
}

func (s *Store) UserByEmail(email string) (*User, error) {
	var u User
	err := s.db.QueryRow(`
		SELECT id, name, email, role, password_hash, created_at
		FROM users WHERE email = ? COLLATE NOCASE`, email).
		Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

// Categories

func (s *Store) ListCategories(offset, limit int) ([]content.Category, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(`
		SELECT id, title, slug, description, cover_image, created_at, updated_at
		FROM categories ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []content.Category{}
	for rows.Next() {
		var c content.Category
		if err := rows.Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.CoverImage, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (s *Store) GetCategory(id string) (*content.Category, error) {
	var c content.Category
	err := s.db.QueryRow(`
		SELECT id, title, slug, description, cover_image, created_at, updated_at
		FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Title, &c.Slug, &c.Description, &c.CoverImage, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (s *Store) CreateCategory(c *content.Category) error {
	c.ID = newID()
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	_, err := s.db.Exec(`
		INSERT INTO categories (id, title, slug, description, cover_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Title, c.Slug, c.Description, c.CoverImage, c.CreatedAt, c.UpdatedAt)
	return mapErr(err)
}

// UpdateCategory writes every field of c. An empty CoverImage keeps the
// stored one.
func (s *Store) UpdateCategory(c *content.Category) error {
	c.UpdatedAt = s.now()
	res, err := s.db.Exec(`
		UPDATE categories SET title = ?, slug = ?, description = ?,
			cover_image = CASE WHEN ? = '' THEN cover_image ELSE ? END,
			updated_at = ?
		WHERE id = ?`,
		c.Title, c.Slug, c.Description, c.CoverImage, c.CoverImage, c.UpdatedAt, c.ID)
	if err := affected(res, err); err != nil {
		return err
	}
	fresh, err := s.GetCategory(c.ID)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// DeleteCategory removes the category and its subcategories.
func (s *Store) DeleteCategory(id string) error {
	return affected(s.db.Exec(`DELETE FROM categories WHERE id = ?`, id))
}

// Subcategories

func (s *Store) ListSubCategories(categoryID string) ([]content.SubCategory, error) {
	rows, err := s.db.Query(`
		SELECT id, category_id, title, slug, description, cover_image, created_at, updated_at
		FROM subcategories WHERE category_id = ? ORDER BY created_at DESC, id`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []content.SubCategory{}
	for rows.Next() {
		var sc content.SubCategory
		if err := rows.Scan(&sc.ID, &sc.CategoryID, &sc.Title, &sc.Slug, &sc.Description, &sc.CoverImage, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *Store) GetSubCategory(id string) (*content.SubCategory, error) {
	var sc content.SubCategory
	err := s.db.QueryRow(`
		SELECT id, category_id, title, slug, description, cover_image, created_at, updated_at
		FROM subcategories WHERE id = ?`, id).
		Scan(&sc.ID, &sc.CategoryID, &sc.Title, &sc.Slug, &sc.Description, &sc.CoverImage, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sc, nil
}

func (s *Store) CreateSubCategory(sc *content.SubCategory) error {
	sc.ID = newID()
	sc.CreatedAt = s.now()
	sc.UpdatedAt = sc.CreatedAt
	_, err := s.db.Exec(`
		INSERT INTO subcategories (id, category_id, title, slug, description, cover_image, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.CategoryID, sc.Title, sc.Slug, sc.Description, sc.CoverImage, sc.CreatedAt, sc.UpdatedAt)
	return mapErr(err)
}

// UpdateSubCategory keeps the stored category and cover image when the
// incoming values are empty.
func (s *Store) UpdateSubCategory(sc *content.SubCategory) error {
	sc.UpdatedAt = s.now()
	res, err := s.db.Exec(`
		UPDATE subcategories SET
			category_id = CASE WHEN ? = '' THEN category_id ELSE ? END,
			title = ?, slug = ?, description = ?,
			cover_image = CASE WHEN ? = '' THEN cover_image ELSE ? END,
			updated_at = ?
		WHERE id = ?`,
		sc.CategoryID, sc.CategoryID, sc.Title, sc.Slug, sc.Description,
		sc.CoverImage, sc.CoverImage, sc.UpdatedAt, sc.ID)
	if err := affected(res, err); err != nil {
		return err
	}
	fresh, err := s.GetSubCategory(sc.ID)
	if err != nil {
		return err
	}
	*sc = *fresh
	return nil
}

func (s *Store) DeleteSubCategory(id string) error {
	return affected(s.db.Exec(`DELETE FROM subcategories WHERE id = ?`, id))
}

// Blogs

func (s *Store) ListBlogs(offset, limit int) ([]content.Blog, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM blogs`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := s.db.Query(`
		SELECT id, title, slug, excerpt, description, cover_image, sort_order, estimated_read_time, created_at, updated_at
		FROM blogs ORDER BY sort_order, created_at DESC, id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []content.Blog{}
	for rows.Next() {
		var b content.Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Description, &b.CoverImage, &b.SortOrder, &b.EstimatedReadTime, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (s *Store) GetBlog(id string) (*content.Blog, error) {
	var b content.Blog
	err := s.db.QueryRow(`
		SELECT id, title, slug, excerpt, description, cover_image, sort_order, estimated_read_time, created_at, updated_at
		FROM blogs WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Slug, &b.Excerpt, &b.Description, &b.CoverImage, &b.SortOrder, &b.EstimatedReadTime, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

// CreateBlog appends the post after every existing one.
func (s *Store) CreateBlog(b *content.Blog) error {
	b.ID = newID()
	b.CreatedAt = s.now()
	b.UpdatedAt = b.CreatedAt
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(sort_order), 0) + 1 FROM blogs`).Scan(&b.SortOrder); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO blogs (id, title, slug, excerpt, description, cover_image, sort_order, estimated_read_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Title, b.Slug, b.Excerpt, b.Description, b.CoverImage, b.SortOrder, b.EstimatedReadTime, b.CreatedAt, b.UpdatedAt)
	return mapErr(err)
}

func (s *Store) UpdateBlog(b *content.Blog) error {
	b.UpdatedAt = s.now()
	res, err := s.db.Exec(`
		UPDATE blogs SET title = ?, slug = ?, excerpt = ?, description = ?,
			cover_image = CASE WHEN ? = '' THEN cover_image ELSE ? END,
			estimated_read_time = ?, updated_at = ?
		WHERE id = ?`,
		b.Title, b.Slug, b.Excerpt, b.Description, b.CoverImage, b.CoverImage,
		b.EstimatedReadTime, b.UpdatedAt, b.ID)
	if err := affected(res, err); err != nil {
		return err
	}
	fresh, err := s.GetBlog(b.ID)
	if err != nil {
		return err
	}
	*b = *fresh
	return nil
}

func (s *Store) DeleteBlog(id string) error {
	return affected(s.db.Exec(`DELETE FROM blogs WHERE id = ?`, id))
}

// Uploads

// SaveUpload stores an uploaded file under name.
func (s *Store) SaveUpload(name, mime string, data []byte) error {
	_, err := s.db.Exec(`INSERT INTO uploads (name, mime, data, created_at) VALUES (?, ?, ?, ?)`,
		name, mime, data, s.now())
	return err
}

func (s *Store) Upload(name string) (mime string, data []byte, err error) {
	err = s.db.QueryRow(`SELECT mime, data FROM uploads WHERE name = ?`, name).Scan(&mime, &data)
	if err != nil {
		return "", nil, mapErr(err)
	}
	return mime, data, nil
}

// affected turns a zero-row update or delete into ErrNotFound.
func affected(res sql.Result, err error) error {
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
