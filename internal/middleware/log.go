package middleware

import (
	"bytes"
	"io"
	"net/http"

	"phone-shop/internal/logger"
	"phone-shop/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 请求体超过这个长度就不写进 action
const maxAuditBody = 2000

// AuditMiddleware 记录登录操作员的写操作（GET 请求不记录）
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	log := logger.WithComponent("audit")

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		// 读取请求体后再放回去，后面的 handler 还要用
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		c.Next()

		// 只记录登录用户的操作
		var userID uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = user.ID
			}
		}
		if userID == 0 {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		if len(bodyBytes) > 0 && len(bodyBytes) < maxAuditBody {
			action += " " + string(bodyBytes)
		}

		entry := models.AuditLog{
			UserID:    &userID,
			RequestID: c.GetString(RequestIDKey),
			Method:    c.Request.Method,
			Path:      path,
			Action:    action,
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}
		if err := db.Create(&entry).Error; err != nil {
			log.Warn().Err(err).Str("path", path).Msg("write audit log failed")
		}
	}
}
