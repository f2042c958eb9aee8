package controllers

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

// DownloadSettlementExcel exports a settlement period's payslips as an
// Excel workbook for accounting.
func DownloadSettlementExcel(c *gin.Context) {
	utils.LogInfo("DownloadSettlementExcel called")

	period := c.Query("period")
	if period == "" {
		utils.BadRequest(c, "Period is required", "Pass period=YYYY-MM")
		return
	}

	var payslips []models.AffiliatePayslip
	if err := config.DB.Preload("Profile").
		Where("period = ?", period).
		Order("profile_id ASC").
		Find(&payslips).Error; err != nil {
		utils.LogError("Failed to fetch payslips for export: %v", err)
		utils.InternalServerError(c, "Failed to fetch payslips", err.Error())
		return
	}
	utils.LogDebug("Retrieved %d payslips for period %s", len(payslips), period)

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Settlement " + period)
	if err != nil {
		utils.InternalServerError(c, "Failed to create Excel sheet", err.Error())
		return
	}

	header := sheet.AddRow()
	for _, title := range []string{"Profile ID", "Name", "Type", "Status", "Sales", "Total Sales", "Commission", "Withholding", "Net Payment", "Bank", "Needs Review"} {
		cell := header.AddCell()
		cell.Value = title
	}

	totalCommission := decimal.Zero
	totalNet := decimal.Zero
	for _, payslip := range payslips {
		row := sheet.AddRow()
		row.AddCell().Value = fmt.Sprintf("%d", payslip.ProfileID)
		row.AddCell().Value = payslip.Profile.Name
		row.AddCell().Value = string(payslip.Profile.Type)
		row.AddCell().Value = string(payslip.Status)
		row.AddCell().Value = fmt.Sprintf("%d", payslip.SaleCount)
		row.AddCell().Value = payslip.TotalSales.String()
		row.AddCell().Value = payslip.TotalCommission.String()
		row.AddCell().Value = payslip.TotalWithholding.String()
		row.AddCell().Value = payslip.NetPayment.String()
		if payslip.BankName != nil && payslip.BankAccountNo != nil {
			row.AddCell().Value = *payslip.BankName + " " + *payslip.BankAccountNo
		} else {
			row.AddCell().Value = "MISSING"
		}
		if payslip.NeedsReview {
			row.AddCell().Value = "YES"
		} else {
			row.AddCell().Value = ""
		}

		totalCommission = totalCommission.Add(payslip.TotalCommission)
		totalNet = totalNet.Add(payslip.NetPayment)
	}

	summary := sheet.AddRow()
	summary.AddCell().Value = "TOTAL"
	for i := 0; i < 5; i++ {
		summary.AddCell()
	}
	summary.AddCell().Value = totalCommission.String()
	summary.AddCell()
	summary.AddCell().Value = totalNet.String()

	filename := fmt.Sprintf("settlement-%s.xlsx", period)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel export: %v", err)
	}
}
