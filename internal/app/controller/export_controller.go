package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dimaspr/belimart-backend/internal/app/service"
	"github.com/dimaspr/belimart-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportController struct {
	exportService service.ExportService
}

func NewExportController(exportService service.ExportService) *ExportController {
	return &ExportController{
		exportService: exportService,
	}
}

// ExportProducts downloads the catalog as an XLSX file (admin)
// GET /api/v1/admin/exports/products
func (ctrl *ExportController) ExportProducts(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	f, err := ctrl.exportService.ExportProducts()
	if err != nil {
		log.Error("Failed to export products", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export products",
		})
		return
	}

	ctrl.sendWorkbook(c, f, "products")
}

// ExportTransactions downloads all transactions as an XLSX file (admin)
// GET /api/v1/admin/exports/transactions
func (ctrl *ExportController) ExportTransactions(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	f, err := ctrl.exportService.ExportTransactions()
	if err != nil {
		log.Error("Failed to export transactions", err, nil)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to export transactions",
		})
		return
	}

	ctrl.sendWorkbook(c, f, "transactions")
}

func (ctrl *ExportController) sendWorkbook(c *gin.Context, f *excelize.File, name string) {
	log := middleware.GetLoggerFromContext(c)

	buf, err := f.WriteToBuffer()
	if err != nil {
		log.Error("Failed to serialize workbook", err, map[string]interface{}{
			"export": name,
		})
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to build export file",
		})
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
