// Package storage persists marketplace listings in SQLite. It owns college
// scoping and status filtering; the feed package receives only the
// candidate sets queried here.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record is not found.
var ErrNotFound = errors.New("not found")

// Listing is the stored representation of a marketplace item.
type Listing struct {
	ID              string
	CollegeID       string
	SellerName      string
	SellerAvatarURL string
	HostelName      string
	Title           string
	Description     string
	Price           float64
	Category        string
	Condition       string
	Images          []string
	Status          string
	CreatedAt       time.Time
	ViewCount       int
}

// DB wraps the SQLite database connection and provides storage operations.
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		college_id TEXT NOT NULL,
		seller_name TEXT NOT NULL DEFAULT '',
		seller_avatar_url TEXT NOT NULL DEFAULT '',
		hostel_name TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price REAL NOT NULL,
		category TEXT NOT NULL,
		condition TEXT NOT NULL,
		images TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME NOT NULL,
		view_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_listings_college_status ON listings(college_id, status);
	CREATE INDEX IF NOT EXISTS idx_listings_created_at ON listings(created_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// CreateListing inserts a new listing, minting its ID. Listings start out
// active unless a status is already set.
func (db *DB) CreateListing(ctx context.Context, l *Listing) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = "active"
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}
	return db.SaveListing(ctx, l)
}

// SaveListing inserts or updates a listing.
func (db *DB) SaveListing(ctx context.Context, l *Listing) error {
	imagesJSON, err := json.Marshal(l.Images)
	if err != nil {
		return fmt.Errorf("marshal images: %w", err)
	}

	query := `
	INSERT INTO listings (id, college_id, seller_name, seller_avatar_url, hostel_name,
		title, description, price, category, condition, images, status, created_at, view_count)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		college_id = excluded.college_id,
		seller_name = excluded.seller_name,
		seller_avatar_url = excluded.seller_avatar_url,
		hostel_name = excluded.hostel_name,
		title = excluded.title,
		description = excluded.description,
		price = excluded.price,
		category = excluded.category,
		condition = excluded.condition,
		images = excluded.images,
		status = excluded.status,
		created_at = excluded.created_at,
		view_count = excluded.view_count
	`

	_, err = db.conn.ExecContext(ctx, query,
		l.ID,
		l.CollegeID,
		l.SellerName,
		l.SellerAvatarURL,
		l.HostelName,
		l.Title,
		l.Description,
		l.Price,
		l.Category,
		l.Condition,
		string(imagesJSON),
		l.Status,
		l.CreatedAt,
		l.ViewCount,
	)
	return err
}

// GetListing retrieves a listing by ID.
func (db *DB) GetListing(ctx context.Context, id string) (*Listing, error) {
	query := selectColumns + ` FROM listings WHERE id = ?`
	return scanListing(db.conn.QueryRowContext(ctx, query, id))
}

// ListActiveByCollege returns all active listings for a college, newest
// first. This is the candidate set handed to the feed core.
func (db *DB) ListActiveByCollege(ctx context.Context, collegeID string) ([]Listing, error) {
	query := selectColumns + `
	FROM listings
	WHERE college_id = ? AND status = 'active'
	ORDER BY created_at DESC`

	rows, err := db.conn.QueryContext(ctx, query, collegeID)
	if err != nil {
		return nil, fmt.Errorf("query active listings: %w", err)
	}
	defer rows.Close()

	listings := []Listing{}
	for rows.Next() {
		l, err := scanListingRow(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// IncrementViews bumps a listing's view counter by one. View counts only
// ever grow; nothing resets them.
func (db *DB) IncrementViews(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE listings SET view_count = view_count + 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetStatus moves a listing to a new lifecycle state.
func (db *DB) SetStatus(ctx context.Context, id, status string) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE listings SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// ExpireOlderThan flips active listings created before the cutoff to
// expired and reports how many were affected.
func (db *DB) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE listings SET status = 'expired' WHERE status = 'active' AND created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire listings: %w", err)
	}
	return res.RowsAffected()
}

// DeleteListing removes a listing permanently.
func (db *DB) DeleteListing(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM listings WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

const selectColumns = `
	SELECT id, college_id, seller_name, seller_avatar_url, hostel_name,
		title, description, price, category, condition, images, status, created_at, view_count`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row *sql.Row) (*Listing, error) {
	l, err := scanListingRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

func scanListingRow(row rowScanner) (*Listing, error) {
	var l Listing
	var imagesJSON string

	err := row.Scan(
		&l.ID,
		&l.CollegeID,
		&l.SellerName,
		&l.SellerAvatarURL,
		&l.HostelName,
		&l.Title,
		&l.Description,
		&l.Price,
		&l.Category,
		&l.Condition,
		&imagesJSON,
		&l.Status,
		&l.CreatedAt,
		&l.ViewCount,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(imagesJSON), &l.Images); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	return &l, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
