package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"phone-shop/internal/models"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler 负责操作日志查询接口
type LogHandler struct {
	DB *gorm.DB
}

func NewLogHandler(db *gorm.DB) *LogHandler {
	return &LogHandler{DB: db}
}

type logResp struct {
	ID        uint      `json:"id"`
	UserID    *uint     `json:"user_id"`
	RequestID string    `json:"request_id"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// ListLogs 列出操作日志（分页 + 时间 + 关键字）。
// 收银员只能看自己的，店主可以看全部或用 user_id 过滤。
func (h *LogHandler) ListLogs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// 分页参数
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	base := h.DB.Model(&models.AuditLog{})
	if user.Role != models.RoleOwner {
		base = base.Where("user_id = ?", user.ID)
	} else if s := c.Query("user_id"); s != "" {
		uid, err := util.ParseID(s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "user_id 格式错误")
			return
		}
		base = base.Where("user_id = ?", uid)
	}

	// 时间筛选：start / end（格式 YYYY-MM-DD）
	if s := c.Query("start"); s != "" {
		start, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "开始日期格式错误")
			return
		}
		base = base.Where("created_at >= ?", start)
	}
	if s := c.Query("end"); s != "" {
		end, err := time.ParseInLocation("2006-01-02", s, time.Local)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "结束日期格式错误")
			return
		}
		base = base.Where("created_at < ?", end.Add(24*time.Hour))
	}

	// 关键字搜索：q（匹配 path / action）
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		like := "%" + q + "%"
		base = base.Where("path LIKE ? OR action LIKE ?", like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	var logs []models.AuditLog
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC, id DESC").
		Limit(size).
		Offset(offset).
		Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return
	}

	items := make([]logResp, 0, len(logs))
	for i := range logs {
		l := &logs[i]
		items = append(items, logResp{
			ID:        l.ID,
			UserID:    l.UserID,
			RequestID: l.RequestID,
			Action:    l.Action,
			Path:      l.Path,
			Method:    l.Method,
			Status:    l.Status,
			IP:        l.IP,
			UserAgent: l.UserAgent,
			CreatedAt: l.CreatedAt,
		})
	}

	util.Success(c, util.Response{
		"items": items,
		"total": total,
		"page":  page,
		"size":  size,
	})
}
