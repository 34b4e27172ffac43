package handler

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/credit-api/internal/domain/entity"
	"github.com/yourusername/credit-api/internal/handler/dto"
	"github.com/yourusername/credit-api/internal/service"
)

// AdminHandler serves the back-office user views.
type AdminHandler struct {
	userService *service.UserService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

// ListUsers handles GET /admin/users?status=...&page=...&per_page=...
func (h *AdminHandler) ListUsers(c *gin.Context) {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	users, total, err := h.userService.ListUsers(status, page, perPage)
	if err != nil {
		handleError(c, err)
		return
	}

	items := make([]*dto.UserListItem, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserListItem(&users[i]))
	}

	c.JSON(http.StatusOK, dto.PaginatedUserResponse{
		Users:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}

// ExportUsers handles GET /admin/users/export?status=... and streams the
// full filtered list as an XLSX workbook.
func (h *AdminHandler) ExportUsers(c *gin.Context) {
	status := c.Query("status")

	var all []entity.User
	page := 1
	for {
		users, total, err := h.userService.ListUsers(status, page, 100)
		if err != nil {
			handleError(c, err)
			return
		}
		all = append(all, users...)
		if int64(len(all)) >= total || len(users) == 0 {
			break
		}
		page++
	}

	filename := "users"
	if status != "" {
		filename = fmt.Sprintf("users_%s", strings.ToLower(status))
	}
	h.exportXLSX(c, all, filename)
}

// exportXLSX writes the user list with a StreamWriter to keep memory flat on
// large exports.
func (h *AdminHandler) exportXLSX(c *gin.Context, users []entity.User, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Users"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AdminHandler] Failed to create StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Full name", "Identification type", "Identification", "Email", "Phone", "Status", "Role", "Registered at"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AdminHandler] Failed to write headers: %v", err)
	}

	for i := range users {
		u := &users[i]
		rowNum := i + 2
		cell := fmt.Sprintf("A%d", rowNum)

		row := []interface{}{
			sanitizeForExcel(u.FullName()),
			u.IdentificationType,
			sanitizeForExcel(u.Identification),
			sanitizeForExcel(u.Email),
			sanitizeForExcel(u.Phone),
			string(u.Status),
			u.Role,
			u.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[AdminHandler] Failed to write row %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AdminHandler] Flush failed: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AdminHandler] Failed to write Excel to response: %v", err)
	}
}

// sanitizeForExcel guards exported cells against formula injection.
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
