package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/chatwidget-api/config"
	"github.com/kendall-kelly/chatwidget-api/generator"
	"github.com/kendall-kelly/chatwidget-api/models"
	"github.com/kendall-kelly/chatwidget-api/services"
	"github.com/kendall-kelly/chatwidget-api/utils"
)

// Customers never see pipeline internals; operators read the logs.
const generationFailedMessage = "Could not prepare your widget. Please try again later."

// GenerateIframe handles POST /api/v1/orders/:orderNumber/iframe
func GenerateIframe(c *gin.Context) {
	orderNumber, ok := orderNumberParam(c)
	if !ok {
		return
	}

	build, err := services.GetIframeService().Generate(c.Request.Context(), orderNumber)
	if err != nil {
		respondIframeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    iframeResponse(build),
	})
}

// GetIframeStatus handles GET /api/v1/orders/:orderNumber/iframe
func GetIframeStatus(c *gin.Context) {
	orderNumber, ok := orderNumberParam(c)
	if !ok {
		return
	}

	build, err := services.GetIframeService().Status(c.Request.Context(), orderNumber)
	if err != nil {
		respondIframeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    iframeResponse(build),
	})
}

func orderNumberParam(c *gin.Context) (string, bool) {
	orderNumber := strings.TrimSpace(c.Param("orderNumber"))
	if orderNumber == "" || len(orderNumber) > 128 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ORDER_NUMBER",
				"message": "A valid order number is required",
			},
		})
		return "", false
	}
	return orderNumber, true
}

func respondIframeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ORDER_NOT_FOUND",
				"message": "Order not found",
			},
		})
	case errors.Is(err, services.ErrBuildNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "WIDGET_NOT_GENERATED",
				"message": "The widget for this order has not been generated yet",
			},
		})
	case generator.CodeOf(err) == generator.CodeInvalidOrder:
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ORDER",
				"message": "The order cannot be turned into a widget",
			},
		})
	default:
		status := http.StatusInternalServerError
		if generator.IsRetryable(err) {
			status = http.StatusServiceUnavailable
			c.Header("Retry-After", "30")
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "WIDGET_GENERATION_FAILED",
				"message": generationFailedMessage,
			},
		})
	}
}

func iframeResponse(build *models.WidgetBuild) gin.H {
	data := gin.H{
		"order_number": build.OrderNumber,
		"identifier":   build.Identifier,
		"status":       build.Status,
		"attempts":     build.Attempts,
		"updated_at":   build.UpdatedAt,
		"public_path":  build.PublicPath,
		"iframe_url":   nil,
		"embed_code":   nil,
	}
	if build.PublicPath != nil {
		base := ""
		if cfg := config.GetConfig(); cfg != nil {
			base = cfg.PublicBaseURL
		}
		if url, err := utils.AbsoluteURL(base, *build.PublicPath); err == nil {
			data["iframe_url"] = url
			data["embed_code"] = utils.EmbedSnippet(url, "Chat")
		}
	}
	if build.ErrorCode != nil {
		data["error_code"] = *build.ErrorCode
	}
	return data
}
