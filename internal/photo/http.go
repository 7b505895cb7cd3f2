package photo

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"photogallery/internal/flash"
	"photogallery/internal/metrics"
)

// RegisterRoutes mounts the form and API surfaces on the router.
func RegisterRoutes(router gin.IRouter, service *Service, flashes *flash.Store, pageSize int) {
	handler := &httpHandler{service: service, flashes: flashes, pageSize: pageSize}

	router.GET("/", handler.index)
	router.GET("/documentation", handler.documentation)
	router.GET("/upload", handler.uploadForm)
	router.POST("/upload", handler.uploadSubmit)
	router.GET("/gallery", handler.gallery)
	router.GET("/photo/:id", handler.viewPhoto)
	router.POST("/photo/:id/delete", handler.deletePhoto)

	router.GET("/api/photos", handler.apiListPhotos)
	router.POST("/api/upload", handler.apiUpload)
}

type httpHandler struct {
	service  *Service
	flashes  *flash.Store
	pageSize int
}

func (h *httpHandler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (h *httpHandler) documentation(c *gin.Context) {
	c.HTML(http.StatusOK, "documentation.html", nil)
}

func (h *httpHandler) uploadForm(c *gin.Context) {
	message, _ := h.flashes.Take(c)
	c.HTML(http.StatusOK, "upload.html", gin.H{"Flash": message})
}

func (h *httpHandler) uploadSubmit(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		if isRequestTooLarge(err) {
			c.String(http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		h.flashes.Set(c, "No file selected")
		c.Redirect(http.StatusFound, "/upload")
		return
	}

	files := form.File["photo"]
	if len(files) == 0 {
		h.flashes.Set(c, "No file selected")
		c.Redirect(http.StatusFound, "/upload")
		return
	}

	result, err := h.service.UploadBatch(c.Request.Context(), files, c.PostForm("description"))
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to store uploads")
		return
	}

	if len(result.Accepted) > 0 {
		for _, p := range result.Accepted {
			metrics.ObserveUpload(p.FileSize)
		}
		h.flashes.Set(c, fmt.Sprintf("Successfully uploaded %d photos!", len(result.Accepted)))
	} else {
		h.flashes.Set(c, "No valid files uploaded")
	}
	c.Redirect(http.StatusFound, "/gallery")
}

func (h *httpHandler) gallery(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}

	photos, total, err := h.service.List(c.Request.Context(), page, h.pageSize)
	if err != nil {
		c.String(http.StatusInternalServerError, "failed to list photos")
		return
	}

	totalPages := (total + h.pageSize - 1) / h.pageSize
	message, _ := h.flashes.Take(c)

	c.HTML(http.StatusOK, "gallery.html", gin.H{
		"Photos":     photos,
		"Page":       page,
		"TotalPages": totalPages,
		"Total":      total,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
		"Flash":      message,
	})
}

func (h *httpHandler) viewPhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "404.html", nil)
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			c.HTML(http.StatusNotFound, "404.html", nil)
			return
		}
		c.String(http.StatusInternalServerError, "failed to load photo")
		return
	}

	c.HTML(http.StatusOK, "view_photo.html", gin.H{"Photo": p})
}

func (h *httpHandler) deletePhoto(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "404.html", nil)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			c.HTML(http.StatusNotFound, "404.html", nil)
			return
		}
		c.String(http.StatusInternalServerError, "failed to delete photo")
		return
	}

	metrics.DeletesTotal.Inc()
	h.flashes.Set(c, "Photo deleted successfully")
	c.Redirect(http.StatusFound, "/gallery")
}

func (h *httpHandler) apiListPhotos(c *gin.Context) {
	photos, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list photos"})
		return
	}
	if photos == nil {
		photos = []Photo{}
	}
	c.JSON(http.StatusOK, photos)
}

func (h *httpHandler) apiUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		if isRequestTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	stored, err := h.service.Upload(c.Request.Context(), fileHeader, c.PostForm("description"))
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFilename):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		case errors.Is(err, ErrExtensionNotAllowed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload file"})
		}
		return
	}

	metrics.ObserveUpload(stored.FileSize)
	c.JSON(http.StatusCreated, gin.H{
		"message": "File uploaded successfully",
		"photo":   stored,
	})
}

func isRequestTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}
