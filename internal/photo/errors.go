package photo

import "errors"

var (
	// ErrPhotoNotFound signals that no record exists for the requested id.
	ErrPhotoNotFound = errors.New("photo not found")
	// ErrNoFile indicates the request carried no file field at all.
	ErrNoFile = errors.New("no file provided")
	// ErrEmptyFilename indicates a file part without a filename.
	ErrEmptyFilename = errors.New("no file selected")
	// ErrExtensionNotAllowed is returned for filenames outside the allow-set.
	ErrExtensionNotAllowed = errors.New("invalid file type")
)
