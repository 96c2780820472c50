package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contentadmin/internal/auth"
	"contentadmin/internal/content"
	"contentadmin/internal/mockapi"
	"contentadmin/internal/resource"
	"contentadmin/internal/ui/textutil"
)

type kind string

const (
	kindCategory    kind = "category"
	kindSubCategory kind = "subcategory"
	kindBlog        kind = "blog"
)

var kindAliases = map[string]kind{
	"category":      kindCategory,
	"categories":    kindCategory,
	"subcategory":   kindSubCategory,
	"subcategories": kindSubCategory,
	"blog":          kindBlog,
	"blogs":         kindBlog,
}

func parseKind(s string) (kind, error) {
	if k, ok := kindAliases[strings.ToLower(s)]; ok {
		return k, nil
	}
	return "", errors.Errorf("unknown resource %q (want category, subcategory or blog)", s)
}

func resourceArgs() []string {
	out := make([]string, 0, len(kindAliases))
	for name := range kindAliases {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// stderrNotifier prints manager notifications the way the dashboard shows
// them in its status line.
func stderrNotifier(w io.Writer) resource.Notifier {
	return resource.NotifierFunc(func(k resource.NotificationKind, msg string) {
		if k == resource.NotifyError {
			fmt.Fprintln(w, "error:", msg)
			return
		}
		fmt.Fprintln(w, msg)
	})
}

func newLoginCmd(e *env) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session",
		Long: `Sign in with an admin account. The session is saved under the session
directory and reused by the dashboard and the other commands until it
expires or you run logout. Missing credentials are read from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if email == "" {
				if email, err = prompt(cmd.ErrOrStderr(), in, "Email: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = prompt(cmd.ErrOrStderr(), in, "Password: "); err != nil {
					return err
				}
			}

			sess, err := e.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return loginError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), auth.WelcomeMessage)
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", sess.User.Email, sess.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

// loginError folds field errors into one line.
func loginError(err error) error {
	fields := resource.FieldErrors(err)
	if len(fields) == 0 {
		return errors.New(resource.Message(err))
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return errors.New(strings.Join(parts, "; "))
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !e.auth.IsAuthenticated() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
				return nil
			}
			if err := e.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

type listOptions struct {
	page     int
	limit    int
	search   string
	category string
}

func newListCmd(e *env) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list <category|subcategory|blog>",
		Short: "Print one page of a resource",
		Example: `  contentadmin list categories --page 2
  contentadmin list categories --search sweets
  contentadmin list subcategories --category 665f1c...
  contentadmin list blogs --limit 50`,
		Args:        cobra.ExactArgs(1),
		ValidArgs:   resourceArgs(),
		Annotations: requiresAuth,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(args[0])
			if err != nil {
				return err
			}
			if opts.limit < 1 {
				opts.limit = e.cfg.UI.PageSize
			}
			l, err := loadListing(cmd.Context(), e, k, opts, stderrNotifier(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			l.render(cmd.OutOrStdout())
			return nil
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&opts.page, "page", 1, "page number")
	fs.IntVar(&opts.limit, "limit", 0, "rows per page (default ui.page_size)")
	fs.StringVar(&opts.search, "search", "", "filter categories on the page by title")
	fs.StringVar(&opts.category, "category", "", "parent category id (subcategories)")
	return cmd
}

// listing is a loaded page ready to print.
type listing struct {
	headers []string
	rows    [][]string
	meta    resource.Metadata
	empty   string
}

func (l listing) render(w io.Writer) {
	if len(l.rows) == 0 {
		fmt.Fprintln(w, l.empty)
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(l.headers...).
		Rows(l.rows...)
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "Page %d of %d · %d total\n", l.meta.PageNumber, max(l.meta.TotalPages, 1), l.meta.TotalItems)
}

func loadListing(ctx context.Context, e *env, k kind, opts listOptions, n resource.Notifier) (listing, error) {
	now := time.Now()
	clientOpts := []content.Option{content.WithLogger(e.logger)}
	switch k {
	case kindCategory:
		filter := func(items []content.Category) []content.Category {
			return content.FilterByTitle(items, opts.search)
		}
		return fetchPage(ctx, content.NewCategoryClient(e.api, clientOpts...), content.CategoryLabels, opts, n, e.logger,
			[]string{"ID", "Title", "Slug", "Description", "Updated"}, filter,
			func(c content.Category) []string {
				return []string{c.ID, c.Title, c.Slug, textutil.Truncate(textutil.SingleLine(c.Description), 40), textutil.Since(c.UpdatedAt, now)}
			})
	case kindSubCategory:
		if opts.category == "" {
			return listing{}, errors.New("--category is required for subcategories")
		}
		return fetchPage(ctx, content.NewSubCategoryClient(e.api, opts.category, clientOpts...), content.SubCategoryLabels, opts, n, e.logger,
			[]string{"ID", "Title", "Slug", "Description", "Updated"}, nil,
			func(s content.SubCategory) []string {
				return []string{s.ID, s.Title, s.Slug, textutil.Truncate(textutil.SingleLine(s.Description), 40), textutil.Since(s.UpdatedAt, now)}
			})
	default:
		return fetchPage(ctx, content.NewBlogClient(e.api, clientOpts...), content.BlogLabels, opts, n, e.logger,
			[]string{"ID", "Title", "Excerpt", "Read", "Updated"}, nil,
			func(b content.Blog) []string {
				return []string{b.ID, b.Title, textutil.Truncate(content.PlainText(b.Excerpt), 40), strconv.Itoa(b.EstimatedReadTime) + " min", textutil.Since(b.UpdatedAt, now)}
			})
	}
}

func fetchPage[T resource.Identifiable, P any](
	ctx context.Context,
	client resource.Client[T, P],
	labels resource.Labels,
	opts listOptions,
	n resource.Notifier,
	logger *zap.Logger,
	headers []string,
	filter func([]T) []T,
	row func(T) []string,
) (listing, error) {
	m := resource.NewManager[T, P](client, labels,
		resource.WithPageSize(opts.limit),
		resource.WithNotifier(n),
		resource.WithLogger(logger))
	if err := m.LoadPage(ctx, opts.page); err != nil {
		return listing{}, err
	}
	snap := m.Snapshot()
	items := snap.Items
	empty := fmt.Sprintf("No %s found", labels.Plural)
	if filter != nil && opts.search != "" {
		items = filter(items)
		empty = fmt.Sprintf("No %s match %q", labels.Plural, opts.search)
	}
	l := listing{headers: headers, meta: snap.Metadata, empty: empty}
	for _, it := range items {
		l.rows = append(l.rows, row(it))
	}
	return l, nil
}

func newDeleteCmd(e *env) *cobra.Command {
	var yes bool
	var category string
	cmd := &cobra.Command{
		Use:         "delete <category|subcategory|blog> <id>",
		Short:       "Delete one resource after confirmation",
		Args:        cobra.ExactArgs(2),
		Annotations: requiresAuth,
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(args[0])
			if err != nil {
				return err
			}
			confirm := func(question string) (bool, error) {
				if yes {
					return true, nil
				}
				answer, err := prompt(cmd.ErrOrStderr(), bufio.NewReader(cmd.InOrStdin()), question+" [y/N] ")
				if err != nil {
					return false, err
				}
				return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes"), nil
			}
			n := stderrNotifier(cmd.ErrOrStderr())
			id := args[1]
			opts := []content.Option{content.WithLogger(e.logger)}
			switch k {
			case kindCategory:
				return deleteOne(cmd.Context(), content.NewCategoryClient(e.api, opts...), content.CategoryLabels, id,
					func(c content.Category) string { return c.Title }, confirm, n, e.logger)
			case kindSubCategory:
				return deleteOne(cmd.Context(), content.NewSubCategoryClient(e.api, category, opts...), content.SubCategoryLabels, id,
					func(s content.SubCategory) string { return s.Title }, confirm, n, e.logger)
			default:
				return deleteOne(cmd.Context(), content.NewBlogClient(e.api, opts...), content.BlogLabels, id,
					func(b content.Blog) string { return b.Title }, confirm, n, e.logger)
			}
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.Flags().StringVar(&category, "category", "", "parent category id (subcategories)")
	return cmd
}

// errCancelled is returned when the confirmation is declined.
var errCancelled = errors.New("cancelled")

// deleteOne looks the target up for the prompt, then runs the manager's
// request/confirm flow. A declined prompt cancels the confirmation.
func deleteOne[T resource.Identifiable, P any](
	ctx context.Context,
	client resource.Client[T, P],
	labels resource.Labels,
	id string,
	name func(T) string,
	confirm func(question string) (bool, error),
	n resource.Notifier,
	logger *zap.Logger,
) error {
	item, err := client.Get(ctx, id)
	if err != nil {
		return errors.Wrapf(err, "load %s", strings.ToLower(labels.Singular))
	}

	m := resource.NewManager[T, P](client, labels, resource.WithNotifier(n), resource.WithLogger(logger))
	if err := m.RequestDelete(id); err != nil {
		return err
	}
	ok, err := confirm(fmt.Sprintf("Delete %s %q?", strings.ToLower(labels.Singular), name(item)))
	if err != nil || !ok {
		_ = m.CancelDelete()
		if err != nil {
			return err
		}
		return errCancelled
	}
	if err := m.ConfirmDelete(ctx); err != nil {
		return errors.New(resource.Message(err))
	}
	return nil
}

func newMockAPICmd(e *env) *cobra.Command {
	var addr, db string
	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Serve a local SQLite-backed copy of the content API",
		Long: `Start a development server that speaks the same REST contract as the
production API. The admin account from mockapi.admin_email and
mockapi.admin_password is created on start, and an empty database is
seeded with sample content.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := e.cfg.MockAPI
			if addr != "" {
				cfg.Addr = addr
			}
			if db != "" {
				cfg.DB = db
			}
			return mockapi.Run(cmd.Context(), cfg, e.logger, func(bound string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Mock API listening on http://%s%s\n", displayAddr(bound), mockapi.BasePath)
				fmt.Fprintf(cmd.OutOrStdout(), "Sign in as %s\n", cfg.AdminEmail)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default mockapi.addr)")
	cmd.Flags().StringVar(&db, "db", "", "SQLite database path (default mockapi.db)")
	return cmd
}

func displayAddr(addr string) string {
	if strings.HasPrefix(addr, "[::]:") {
		return "localhost:" + strings.TrimPrefix(addr, "[::]:")
	}
	if strings.HasPrefix(addr, "0.0.0.0:") {
		return "localhost:" + strings.TrimPrefix(addr, "0.0.0.0:")
	}
	return addr
}

func prompt(w io.Writer, r *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}
