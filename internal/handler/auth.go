package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"phone-shop/internal/config"
	"phone-shop/internal/models"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// 连续失败多少次后锁定，以及锁定时长
const (
	maxFailedLogins = 5
	lockDuration    = 10 * time.Minute
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthHandler 负责登录/注册相关接口
type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// NewAuthHandler 构造函数
func NewAuthHandler(db *gorm.DB, cfg config.JWTConfig) *AuthHandler {
	ttlHours := cfg.ExpireHours
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:        db,
		JWTSecret: cfg.Secret,
		Issuer:    cfg.Issuer,
		TokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

// ---------- 注册 ----------

type registerReq struct {
	Username        string `json:"username" binding:"required"`         // 3-20 位，字母数字下划线
	Password        string `json:"password" binding:"required"`         // 8-32 且强度检查
	ConfirmPassword string `json:"confirm_password" binding:"required"` // 必须和 Password 一致
	DisplayName     string `json:"display_name" binding:"max=64"`
}

// Register 注册操作员。第一个注册的账号是店主，之后的都是收银员。
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	if !usernameRe.MatchString(req.Username) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "用户名必须为3-20位字母、数字或下划线")
		return
	}

	if !isStrongPassword(req.Password) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "密码需8-32位，且包含大写、小写字母和数字")
		return
	}

	if req.Password != req.ConfirmPassword {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "两次输入的密码不一致")
		return
	}

	var user models.User
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		// 不区分大小写唯一：使用 LOWER(username) 检查
		var count int64
		if err := tx.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?)", req.Username).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errUsernameTaken
		}

		var users int64
		if err := tx.Model(&models.User{}).Count(&users).Error; err != nil {
			return err
		}
		role := models.RoleCashier
		if users == 0 {
			role = models.RoleOwner
		}

		hash, err := util.HashPassword(req.Password)
		if err != nil {
			return err
		}
		user = models.User{
			Username:     req.Username,
			PasswordHash: hash,
			DisplayName:  req.DisplayName,
			Role:         role,
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, errUsernameTaken) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "用户名已存在")
		return
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "创建用户失败")
		return
	}

	util.Success(c, util.Response{
		"message": "注册成功",
		"user":    userView(&user),
	})
}

var errUsernameTaken = errors.New("username taken")

// 检查密码强度：8-32 位，包含大小写字母和数字
func isStrongPassword(pwd string) bool {
	if len(pwd) < 8 || len(pwd) > 32 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// ---------- 登录 ----------

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "参数错误")
		return
	}

	req.Username = strings.TrimSpace(req.Username)

	var user models.User
	// 用户名不区分大小写匹配
	if err := h.DB.Where("LOWER(username) = LOWER(?)", req.Username).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "用户名或密码错误")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询用户失败")
		}
		return
	}

	now := time.Now()

	// 检查是否被锁定
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "账户已锁定，请稍后再试")
		return
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		// 密码错误：递增失败次数，达到上限则锁定
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockUntil := now.Add(lockDuration)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		_ = h.DB.Save(&user).Error
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "用户名或密码错误")
		return
	}

	// 登录成功：重置失败次数和锁定时间，记录登录 IP 和时间
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginIP = c.ClientIP()
	user.LastLoginAt = &now
	_ = h.DB.Save(&user).Error

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, user.Role, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "生成 token 失败")
		return
	}

	util.Success(c, util.Response{
		"token":      token,
		"expires_in": int(h.TokenTTL.Seconds()),
		"user":       userView(&user),
	})
}
