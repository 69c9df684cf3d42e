package handler

import (
	"net/http"

	"phone-shop/internal/models"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser 取出 AuthMiddleware 放入的当前操作员，取不到时直接返回 401
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "未登录")
		return nil, false
	}
	return user, true
}

func userView(user *models.User) gin.H {
	return gin.H{
		"id":           user.ID,
		"username":     user.Username,
		"display_name": user.DisplayName,
		"role":         user.Role,
	}
}

// GetMe 返回当前登录用户信息（需要经过 AuthMiddleware）
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	view := userView(user)
	view["created_at"] = user.CreatedAt
	view["last_login_at"] = user.LastLoginAt
	util.Success(c, util.Response{"user": view})
}
