package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"phone-shop/internal/models"
	"phone-shop/internal/service"
	"phone-shop/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ImportExportHandler 负责资金流水导出
type ImportExportHandler struct {
	Engine *service.Engine
}

func NewImportExportHandler(eng *service.Engine) *ImportExportHandler {
	return &ImportExportHandler{Engine: eng}
}

var exportHeaders = []string{"编号", "类型", "美元", "本币", "说明", "关联类型", "关联ID", "时间"}

// loadEntries 按筛选条件取出全部流水（不分页）
func (h *ImportExportHandler) loadEntries(c *gin.Context) ([]models.TransactionLogEntry, bool) {
	f, _, _, ok := parseListFilter(c)
	if !ok {
		return nil, false
	}
	rows, _, err := h.Engine.Transactions(c.Request.Context(), f)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "查询失败")
		return nil, false
	}
	return rows, true
}

func exportRow(e *models.TransactionLogEntry) []string {
	ref := ""
	if e.ReferenceID != nil {
		ref = strconv.FormatUint(uint64(*e.ReferenceID), 10)
	}
	return []string{
		strconv.FormatUint(uint64(e.ID), 10),
		e.Type,
		e.AmountUSD.StringFixed(2),
		e.AmountLC.StringFixed(0),
		e.Description,
		e.ReferenceType,
		ref,
		e.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ExportCSV 导出流水为 CSV
func (h *ImportExportHandler) ExportCSV(c *gin.Context) {
	entries, ok := h.loadEntries(c)
	if !ok {
		return
	}

	// 设置响应头
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	// UTF-8 BOM（让 Excel 正确识别中文）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer.Write(exportHeaders)
	for i := range entries {
		writer.Write(exportRow(&entries[i]))
	}
}

// ExportXLSX 导出流水为 XLSX
func (h *ImportExportHandler) ExportXLSX(c *gin.Context) {
	entries, ok := h.loadEntries(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "资金流水"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "创建工作表失败")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	// 设置表头
	for i, h := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, h)
	}

	// 写入数据，金额列写成数字方便求和
	for idx := range entries {
		e := &entries[idx]
		row := idx + 2
		usd, _ := e.AmountUSD.Float64()
		lc, _ := e.AmountLC.Float64()

		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), e.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), e.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), usd)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), lc)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), e.Description)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), e.ReferenceType)
		if e.ReferenceID != nil {
			f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), *e.ReferenceID)
		}
		f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), e.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 40)
	f.SetColWidth(sheetName, "F", "G", 12)
	f.SetColWidth(sheetName, "H", "H", 20)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "导出失败")
	}
}
