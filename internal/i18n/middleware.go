package i18n

import "github.com/gin-gonic/gin"

// Middleware picks the response language from the locale query parameter,
// then Accept-Language.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loc := NewLocalizer(c.Query("locale"), c.GetHeader("Accept-Language"))
		c.Request = c.Request.WithContext(WithLocalizer(c.Request.Context(), loc))
		c.Next()
	}
}
