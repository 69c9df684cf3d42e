package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"phone-shop/internal/models"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthMiddleware 校验 JWT，并在 context 里放入当前操作员。
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = parts[1]
			}
		}

		// 2) URL 查询参数 ?token=xxx（用于导出下载等无法自定义 Header 的场景）
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) Cookie ps_token
		if tokenStr == "" {
			if cookie, err := c.Cookie("ps_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "登录已失效，请重新登录")
			c.Abort()
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "用户不存在")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询用户失败")
			}
			c.Abort()
			return
		}

		c.Set("currentUser", &user)
		c.Next()
	}
}

// RequireRole 只允许指定角色访问，必须放在 AuthMiddleware 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				for _, r := range roles {
					if user.Role == r {
						c.Next()
						return
					}
				}
			}
		}
		util.Error(c, http.StatusForbidden, util.CodeAuth, "没有权限")
		c.Abort()
	}
}
