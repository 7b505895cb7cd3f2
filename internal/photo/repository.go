package photo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// Repository provides access to photo metadata storage.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new photo repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const photoColumns = `id, filename, original_filename, file_path, file_size, mime_type, upload_date, description`

// InsertBatch persists the staged records in one transaction. Either every
// record is committed or none is; the stored rows are returned with their
// assigned ids and upload dates.
func (r *Repository) InsertBatch(ctx context.Context, photos []Photo) ([]Photo, error) {
	if len(photos) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
INSERT INTO photos (filename, original_filename, file_path, file_size, mime_type, description)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + photoColumns + `;`

	stored := make([]Photo, 0, len(photos))
	for _, p := range photos {
		row := tx.QueryRow(ctx, query,
			p.Filename,
			p.OriginalFilename,
			p.FilePath,
			p.FileSize,
			p.MimeType,
			p.Description,
		)

		var s Photo
		if err := row.Scan(&s.ID, &s.Filename, &s.OriginalFilename, &s.FilePath, &s.FileSize, &s.MimeType, &s.UploadDate, &s.Description); err != nil {
			return nil, fmt.Errorf("insert photo metadata: %w", err)
		}
		stored = append(stored, s)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit insert batch: %w", err)
	}
	return stored, nil
}

// List returns one page of records, newest first, plus the total count.
func (r *Repository) List(ctx context.Context, page, pageSize int) ([]Photo, int, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM photos;`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count photos: %w", err)
	}

	query := `
SELECT ` + photoColumns + `
FROM photos
ORDER BY upload_date DESC, id DESC
LIMIT $1 OFFSET $2;`

	rows, err := r.pool.Query(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos, err := scanPhotos(rows)
	if err != nil {
		return nil, 0, err
	}
	return photos, total, nil
}

// ListAll returns every record, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT ` + photoColumns + `
FROM photos
ORDER BY upload_date DESC, id DESC;`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list all photos: %w", err)
	}
	defer rows.Close()

	return scanPhotos(rows)
}

// Get fetches metadata for a single photo.
func (r *Repository) Get(ctx context.Context, id int64) (Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `SELECT ` + photoColumns + ` FROM photos WHERE id = $1;`

	var p Photo
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Filename,
		&p.OriginalFilename,
		&p.FilePath,
		&p.FileSize,
		&p.MimeType,
		&p.UploadDate,
		&p.Description,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Photo{}, ErrPhotoNotFound
		}
		return Photo{}, fmt.Errorf("get photo metadata: %w", err)
	}
	return p, nil
}

// Delete removes the record for id, reporting ErrPhotoNotFound when absent.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM photos WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete photo metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPhotoNotFound
	}
	return nil
}

func scanPhotos(rows pgx.Rows) ([]Photo, error) {
	var photos []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.Filename, &p.OriginalFilename, &p.FilePath, &p.FileSize, &p.MimeType, &p.UploadDate, &p.Description); err != nil {
			return nil, fmt.Errorf("scan photo metadata: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate photos: %w", err)
	}
	return photos, nil
}
