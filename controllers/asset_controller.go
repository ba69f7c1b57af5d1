package controllers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/services"
	"github.com/kendall-kelly/chatwidget-api/utils"
)

func validateAssetRequest(c *gin.Context) (string, string, bool) {
	filename := c.Param("filename")
	kind, err := utils.ValidateArtifactFilename(filename)
	if err != nil {
		code := "INVALID_FILENAME"
		if artifactErr, ok := err.(*utils.ArtifactError); ok {
			code = artifactErr.Code
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return "", "", false
	}
	return filename, kind.ContentType(), true
}

func assetNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "FILE_NOT_FOUND",
			"message": "Widget file not found",
		},
	})
}

// GetIframeAsset handles GET /iframes/:filename - serves a generated widget
// file from the local artifact directory
func GetIframeAsset(c *gin.Context) {
	filename, contentType, ok := validateAssetRequest(c)
	if !ok {
		return
	}

	filePath := filepath.Join(utils.ArtifactDir, filename)
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		assetNotFound(c)
		return
	}

	// Artifacts are replaced in place on regeneration
	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Content-Type-Options", "nosniff")
	c.File(filePath)
}

// RedirectIframeAsset handles GET /iframes/:filename when artifacts live in
// S3 - redirects to a short-lived presigned URL
func RedirectIframeAsset(c *gin.Context) {
	filename, _, ok := validateAssetRequest(c)
	if !ok {
		return
	}

	prefix := ""
	if cfg := config.GetConfig(); cfg != nil {
		prefix = strings.Trim(cfg.IframePublicPrefix, "/")
	}
	s3 := services.GetS3Service()
	if s3 == nil {
		assetNotFound(c)
		return
	}
	url, err := s3.GetPresignedURL(c.Request.Context(), path.Join(prefix, filename))
	if err != nil || url == "" {
		assetNotFound(c)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusTemporaryRedirect, url)
}
