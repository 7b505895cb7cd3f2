package photo

import "time"

// Photo is the stored metadata row describing one uploaded image.
type Photo struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	UploadDate       time.Time `json:"upload_date"`
	Description      *string   `json:"description"`
}

// BatchResult summarizes one multi-file upload request.
type BatchResult struct {
	// Accepted holds the persisted records, in submission order.
	Accepted []Photo
	// Submitted counts candidate files that carried a filename.
	Submitted int
}
