package httpserver

import (
	"errors"
	"log"
	"net/http"

	"biglous-storefront/internal/cms"
	"github.com/gin-gonic/gin"
)

// homepageHandler serves the CMS homepage document. CMS failures fall back
// to the built-in default copy; the endpoint never errors.
func homepageHandler(content ContentService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		preview := c.Query("preview") == "1"
		home, err := content.Homepage(c.Request.Context(), preview)
		if err != nil {
			if !errors.Is(err, cms.ErrNotConfigured) {
				logger.Printf("homepage: cms fetch failed: %v", err)
			}
			c.JSON(http.StatusOK, cms.DefaultHomepage())
			return
		}
		c.JSON(http.StatusOK, home)
	}
}

// instagramHandler proxies the feed. The client serves fallback posts on
// failure, so this always answers success.
func instagramHandler(feed FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, source := feed.Recent(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"success": true, "data": posts, "source": source})
	}
}
