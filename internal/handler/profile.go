package handler

import (
	"net/http"
	"strings"

	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UpdateProfileReq 更新基本资料请求
type UpdateProfileReq struct {
	DisplayName string `json:"display_name" binding:"max=64"`
}

// ChangePasswordReq 修改密码请求
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// UpdateProfile 更新当前操作员的昵称
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req UpdateProfileReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
			return
		}

		req.DisplayName = strings.TrimSpace(req.DisplayName)

		if err := db.Model(user).Update("display_name", req.DisplayName).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "更新失败")
			return
		}
		user.DisplayName = req.DisplayName

		util.Success(c, util.Response{"user": userView(user)})
	}
}

// ChangePassword 修改当前操作员密码
func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
			return
		}

		if !util.CheckPassword(req.OldPassword, user.PasswordHash) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "原密码错误")
			return
		}
		if !isStrongPassword(req.NewPassword) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "密码需8-32位，且包含大写、小写字母和数字")
			return
		}

		hash, err := util.HashPassword(req.NewPassword)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "密码加密失败")
			return
		}

		if err := db.Model(user).Update("password_hash", hash).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "更新密码失败")
			return
		}

		util.Success(c, util.Response{
			"message": "密码修改成功，请使用新密码重新登录",
		})
	}
}
