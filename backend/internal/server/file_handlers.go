package server

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"faqgraph/backend/internal/ingest"
)

// contentTypeForUpload maps an uploaded file to an accepted ingestion
// content type, or empty when the format is not supported
func contentTypeForUpload(filename, declared string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return ingest.ContentTypeText
	case ".md", ".markdown":
		return ingest.ContentTypeMarkdown
	case ".html", ".htm":
		return ingest.ContentTypeHTML
	}
	switch declared {
	case ingest.ContentTypeText, ingest.ContentTypeMarkdown, ingest.ContentTypeHTML:
		return declared
	}
	return ""
}

func (s *Server) handleUploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
		return
	}

	subject := c.PostForm("document_subject")
	if subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing document_subject"})
		return
	}

	contentType := contentTypeForUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if contentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document type, only text, markdown and HTML are supported"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	result, err := s.pipeline.Run(c.Request.Context(), content, contentType, map[string]string{
		"subject": subject,
	})
	if err != nil {
		s.logger.Error("Ingestion failed",
			zap.String("subject", subject),
			zap.Error(err),
		)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Ingestion failed",
			"result": result,
		})
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleDeleteFilesBySubject(c *gin.Context) {
	subject := c.Param("subject")

	deleted, err := s.pipeline.DeleteByMetadata(c.Request.Context(), map[string]string{
		"subject": subject,
	})
	if err != nil {
		s.logger.Error("Bulk delete failed",
			zap.String("subject", subject),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}
