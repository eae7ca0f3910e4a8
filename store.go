package blogindex

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	_ "modernc.org/sqlite"

	"github.com/eringen/blogindex/assets"
	"github.com/eringen/blogindex/content"
	"github.com/eringen/blogindex/markdown"
)

const (
	dateLayout = "2006-01-02"

	taxonomyCategory = "category"
	taxonomyTag      = "tag"
)

// Store wraps a SQLite database holding the CMS posts, their taxonomy terms
// and uploaded media.
type Store struct {
	db     *sql.DB
	policy *bluemonday.Policy
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets readers proceed while the admin writes; busy_timeout makes
	// writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, policy: bluemonday.UGCPolicy()}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS posts (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    content TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL,
    modified TEXT NOT NULL,
    featured_image TEXT NOT NULL DEFAULT '',
    published INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS post_terms (
    post_slug TEXT NOT NULL,
    taxonomy TEXT NOT NULL,
    name TEXT NOT NULL,
    position INTEGER NOT NULL,
    PRIMARY KEY (post_slug, taxonomy, name)
);
CREATE TABLE IF NOT EXISTS media (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    alt_text TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    placeholder TEXT NOT NULL DEFAULT '',
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

const postColumns = `slug, title, excerpt, content, date, modified, featured_image, published`

func scanPost(row interface{ Scan(...any) error }) (CMSPost, error) {
	var p CMSPost
	var published int
	if err := row.Scan(&p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.Date, &p.Modified, &p.FeaturedImage, &published); err != nil {
		return CMSPost{}, err
	}
	p.Published = published == 1
	return p, nil
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (CMSPost, error) {
	return s.getPost(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = 1`, slug)
}

// GetPostAny returns a post by slug regardless of published status (for admin).
func (s *Store) GetPostAny(slug string) (CMSPost, error) {
	return s.getPost(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug)
}

func (s *Store) getPost(query, slug string) (CMSPost, error) {
	p, err := scanPost(s.db.QueryRow(query, slug))
	if err != nil {
		return CMSPost{}, err
	}
	terms, err := s.loadTerms()
	if err != nil {
		return CMSPost{}, err
	}
	p.Categories = terms[termKey{p.Slug, taxonomyCategory}]
	p.Tags = terms[termKey{p.Slug, taxonomyTag}]
	return p, nil
}

// ListAllPosts returns every post (published and drafts) ordered by date descending.
func (s *Store) ListAllPosts() ([]CMSPost, error) {
	return s.listPosts(`SELECT ` + postColumns + ` FROM posts ORDER BY date DESC, slug`)
}

// ListPublished returns published posts ordered by date descending.
func (s *Store) ListPublished() ([]CMSPost, error) {
	return s.listPosts(`SELECT ` + postColumns + ` FROM posts WHERE published = 1 ORDER BY date DESC, slug`)
}

func (s *Store) listPosts(query string) ([]CMSPost, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []CMSPost
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	terms, err := s.loadTerms()
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].Categories = terms[termKey{posts[i].Slug, taxonomyCategory}]
		posts[i].Tags = terms[termKey{posts[i].Slug, taxonomyTag}]
	}
	return posts, nil
}

type termKey struct {
	slug     string
	taxonomy string
}

func (s *Store) loadTerms() (map[termKey][]string, error) {
	rows, err := s.db.Query(`SELECT post_slug, taxonomy, name FROM post_terms ORDER BY post_slug, taxonomy, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	terms := make(map[termKey][]string)
	for rows.Next() {
		var k termKey
		var name string
		if err := rows.Scan(&k.slug, &k.taxonomy, &name); err != nil {
			return nil, err
		}
		terms[k] = append(terms[k], name)
	}
	return terms, rows.Err()
}

// SavePost upserts a post together with its categories and tags.
func (s *Store) SavePost(p CMSPost) error {
	if p.Modified == "" {
		p.Modified = p.Date
	}
	published := 0
	if p.Published {
		published = 1
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(slug) DO UPDATE SET title = excluded.title, excerpt = excluded.excerpt,
    content = excluded.content, date = excluded.date, modified = excluded.modified,
    featured_image = excluded.featured_image, published = excluded.published`,
		p.Slug, p.Title, p.Excerpt, p.Content, p.Date, p.Modified, p.FeaturedImage, published); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM post_terms WHERE post_slug = ?`, p.Slug); err != nil {
		return err
	}
	if err := insertTerms(tx, p.Slug, taxonomyCategory, p.Categories); err != nil {
		return err
	}
	if err := insertTerms(tx, p.Slug, taxonomyTag, p.Tags); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTerms(tx *sql.Tx, slug, taxonomy string, names []string) error {
	seen := make(map[string]bool)
	pos := 0
	for _, n := range FilterEmpty(names) {
		if seen[n] {
			continue
		}
		seen[n] = true
		if _, err := tx.Exec(`INSERT INTO post_terms (post_slug, taxonomy, name, position) VALUES (?, ?, ?, ?)`,
			slug, taxonomy, n, pos); err != nil {
			return err
		}
		pos++
	}
	return nil
}

// DeletePost removes a post and its terms by slug.
func (s *Store) DeletePost(slug string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM post_terms WHERE post_slug = ?`, slug); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM posts WHERE slug = ?`, slug); err != nil {
		return err
	}
	return tx.Commit()
}

// ListNodes returns published posts in the CMS's nested shape. Featured images
// resolve against uploaded media; mediaPrefix is the URL path thumbnails are
// served under.
func (s *Store) ListNodes(mediaPrefix string) ([]content.CMSNode, error) {
	posts, err := s.ListPublished()
	if err != nil {
		return nil, err
	}
	media, err := s.ListMedia()
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Media, len(media))
	for _, m := range media {
		byName[m.Filename] = m
	}

	nodes := make([]content.CMSNode, 0, len(posts))
	for _, p := range posts {
		body, err := markdown.Render([]byte(p.Content))
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", p.Slug, err)
		}
		excerpt := s.policy.Sanitize(p.Excerpt)
		if strings.TrimSpace(excerpt) == "" {
			excerpt = markdown.Excerpt(body, markdown.ExcerptLength)
		}
		n := content.CMSNode{
			Title:      p.Title,
			Excerpt:    excerpt,
			Content:    body,
			Slug:       p.Slug,
			Date:       parseStoredDate(p.Date),
			Modified:   parseStoredDate(p.Modified),
			Categories: termConnection(p.Categories),
			Tags:       termConnection(p.Tags),
		}
		if m, ok := byName[p.FeaturedImage]; ok {
			n.FeaturedImage = &content.FeaturedImage{Node: content.MediaNode{
				AltText: m.AltText,
				Image: &content.Image{
					Src:         strings.TrimRight(mediaPrefix, "/") + "/" + m.Filename,
					Width:       assets.ThumbSize,
					Height:      assets.ThumbSize,
					Placeholder: m.Placeholder,
				},
			}}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func termConnection(names []string) content.TermConnection {
	var c content.TermConnection
	for _, n := range names {
		c.Nodes = append(c.Nodes, content.Term{Name: n})
	}
	return c
}

func parseStoredDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SaveMedia upserts media metadata.
func (s *Store) SaveMedia(m Media) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO media (filename, original_name, alt_text, width, height, size, placeholder, uploaded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Filename, m.OriginalName, m.AltText, m.Width, m.Height, m.Size, m.Placeholder, m.UploadedAt)
	return err
}

// ListMedia returns uploaded media, newest first.
func (s *Store) ListMedia() ([]Media, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, alt_text, width, height, size, placeholder, uploaded_at FROM media ORDER BY uploaded_at DESC, filename`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Media
	for rows.Next() {
		var m Media
		if err := rows.Scan(&m.Filename, &m.OriginalName, &m.AltText, &m.Width, &m.Height, &m.Size, &m.Placeholder, &m.UploadedAt); err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// HasMedia reports whether a media item with filename exists.
func (s *Store) HasMedia(filename string) (bool, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM media WHERE filename = ?`, filename).Scan(&n); err != nil {
		return false, fmt.Errorf("count media: %w", err)
	}
	return n > 0, nil
}

// DeleteMedia removes media metadata by filename. Posts referencing it keep
// the filename and simply render without a thumbnail.
func (s *Store) DeleteMedia(filename string) error {
	_, err := s.db.Exec(`DELETE FROM media WHERE filename = ?`, filename)
	return err
}
