package photo

import (
	"context"
	"io"
	"mime/multipart"
	"path"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"photogallery/internal/config"
)

// metadataStore abstracts the persistence layer.
type metadataStore interface {
	InsertBatch(ctx context.Context, photos []Photo) ([]Photo, error)
	List(ctx context.Context, page, pageSize int) ([]Photo, int, error)
	ListAll(ctx context.Context) ([]Photo, error)
	Get(ctx context.Context, id int64) (Photo, error)
	Delete(ctx context.Context, id int64) error
}

// fileStore abstracts on-disk persistence of uploaded bytes.
type fileStore interface {
	Path(filename string) string
	Save(filename string, r io.Reader) (int64, error)
	Remove(path string) error
}

// Service runs the ingestion pipeline and the browse/delete flows.
type Service struct {
	repo  metadataStore
	files fileStore
	cfg   config.UploadConfig
	log   *zap.Logger
}

// NewService constructs a photo service.
func NewService(repo metadataStore, files fileStore, cfg config.UploadConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, files: files, cfg: cfg, log: log}
}

// Upload ingests a single file and commits its record. Validation failures
// are returned as the sentinel errors in errors.go.
func (s *Service) Upload(ctx context.Context, fileHeader *multipart.FileHeader, description string) (Photo, error) {
	if fileHeader == nil {
		return Photo{}, ErrNoFile
	}

	staged, err := s.stage(fileHeader, description)
	if err != nil {
		return Photo{}, err
	}

	stored, err := s.repo.InsertBatch(ctx, []Photo{staged})
	if err != nil {
		s.discard(staged)
		return Photo{}, err
	}
	return stored[0], nil
}

// UploadBatch ingests a multi-file form submission. Each candidate is
// processed independently: a rejected or failed file never aborts the rest.
// Accepted records are committed together in one transaction after the whole
// batch has been written to disk; when nothing is accepted, nothing commits.
func (s *Service) UploadBatch(ctx context.Context, fileHeaders []*multipart.FileHeader, description string) (BatchResult, error) {
	var result BatchResult
	var staged []Photo

	for _, fh := range fileHeaders {
		if fh == nil || fh.Filename == "" {
			continue
		}
		result.Submitted++

		p, err := s.stage(fh, description)
		if err != nil {
			s.log.Info("skipping upload candidate",
				zap.String("original_filename", fh.Filename),
				zap.Error(err))
			continue
		}
		staged = append(staged, p)
	}

	if len(staged) == 0 {
		return result, nil
	}

	stored, err := s.repo.InsertBatch(ctx, staged)
	if err != nil {
		for _, p := range staged {
			s.discard(p)
		}
		return BatchResult{Submitted: result.Submitted}, err
	}

	result.Accepted = stored
	return result, nil
}

// stage validates one candidate, writes its bytes under a fresh storage name
// and returns the metadata record ready for commit.
func (s *Service) stage(fileHeader *multipart.FileHeader, description string) (Photo, error) {
	if fileHeader.Filename == "" {
		return Photo{}, ErrEmptyFilename
	}

	original := sanitizeFilename(fileHeader.Filename)
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(original), "."))
	if ext == "" || !s.cfg.Allowed(ext) {
		return Photo{}, ErrExtensionNotAllowed
	}

	storedName := newStorageName(ext)

	src, err := fileHeader.Open()
	if err != nil {
		return Photo{}, err
	}
	defer src.Close()

	size, err := s.files.Save(storedName, src)
	if err != nil {
		return Photo{}, err
	}

	filePath := s.files.Path(storedName)

	// A failed decode is logged but does not reject the upload; the
	// extension check is the only gate.
	if _, err := imaging.Open(filePath); err != nil {
		s.log.Warn("stored file does not decode as an image",
			zap.String("filename", storedName),
			zap.Error(err))
	}

	var desc *string
	if description != "" {
		desc = &description
	}

	return Photo{
		Filename:         storedName,
		OriginalFilename: original,
		FilePath:         filePath,
		FileSize:         size,
		MimeType:         contentType(fileHeader),
		Description:      desc,
	}, nil
}

// discard removes a staged file after its record failed to commit.
func (s *Service) discard(p Photo) {
	if err := s.files.Remove(p.FilePath); err != nil {
		s.log.Warn("cleanup of uncommitted upload failed",
			zap.String("file_path", p.FilePath),
			zap.Error(err))
	}
}

// List returns one gallery page plus the total record count.
func (s *Service) List(ctx context.Context, page, pageSize int) ([]Photo, int, error) {
	return s.repo.List(ctx, page, pageSize)
}

// ListAll returns every record, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Photo, error) {
	return s.repo.ListAll(ctx)
}

// Get fetches a single record.
func (s *Service) Get(ctx context.Context, id int64) (Photo, error) {
	return s.repo.Get(ctx, id)
}

// Delete removes the stored file best-effort, then the record. The record is
// always removed when it exists, even if the file is already gone.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.files.Remove(p.FilePath); err != nil {
		s.log.Warn("could not remove stored file, deleting record anyway",
			zap.String("file_path", p.FilePath),
			zap.Error(err))
	}

	return s.repo.Delete(ctx, id)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename strips directory components and characters outside a
// conservative set, mirroring what a browser-supplied name may contain.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")
	if name == "" || name == "/" {
		return "upload"
	}
	return name
}

// newStorageName synthesizes a collision-resistant storage filename from a
// 128-bit random token plus the validated extension.
func newStorageName(ext string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return token + "." + ext
}

func contentType(fileHeader *multipart.FileHeader) string {
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
