package controllers

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/config"
	"github.com/harborline/CruiseLink/models"
	"github.com/harborline/CruiseLink/utils"
	"github.com/jung-kurt/gofpdf"
)

// DownloadPayslipPDF generates and returns the PDF statement for an
// approved payslip. DRAFT payslips are still recomputable and are not
// exported.
func DownloadPayslipPDF(c *gin.Context) {
	utils.LogInfo("DownloadPayslipPDF called")
	payslipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid payslip ID", nil)
		return
	}

	var payslip models.AffiliatePayslip
	if err := config.DB.Preload("Profile").First(&payslip, payslipID).Error; err != nil {
		utils.NotFound(c, "Payslip not found")
		return
	}

	if payslip.Status == models.PayslipStatusDraft {
		utils.Conflict(c, "Payslip must be approved before export", gin.H{"status": payslip.Status})
		return
	}

	pdf, err := buildPayslipPDF(&payslip)
	if err != nil {
		utils.LogError("Failed to build payslip PDF %d: %v", payslip.ID, err)
		utils.InternalServerError(c, "Failed to generate PDF", nil)
		return
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to render payslip PDF %d: %v", payslip.ID, err)
		utils.InternalServerError(c, "Failed to generate PDF", nil)
		return
	}

	filename := fmt.Sprintf("payslip-%d-%s.pdf", payslip.ProfileID, payslip.Period)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(200, "application/pdf", buf.Bytes())
}

// DeliverPayslip emails the PDF statement to the affiliate and marks the
// payslip SENT. Delivery failure leaves the payslip APPROVED so the
// caller can retry; the payslip state never rolls back on a delivery
// problem.
func DeliverPayslip(c *gin.Context) {
	utils.LogInfo("DeliverPayslip called")
	payslipID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid payslip ID", nil)
		return
	}

	admin, exists := c.Get("admin")
	if !exists {
		utils.Unauthorized(c, "Admin not found in context")
		return
	}
	adminModel, ok := admin.(models.Admin)
	if !ok {
		utils.InternalServerError(c, "Invalid admin type", nil)
		return
	}

	var payslip models.AffiliatePayslip
	if err := config.DB.Preload("Profile").First(&payslip, payslipID).Error; err != nil {
		utils.NotFound(c, "Payslip not found")
		return
	}

	if payslip.Status != models.PayslipStatusApproved {
		utils.Conflict(c, "Only approved payslips can be delivered", gin.H{"status": payslip.Status})
		return
	}

	pdf, err := buildPayslipPDF(&payslip)
	if err != nil {
		utils.LogError("Failed to build payslip PDF %d: %v", payslip.ID, err)
		utils.InternalServerError(c, "Failed to generate PDF", nil)
		return
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("payslip-%d-%s.pdf", payslip.ProfileID, payslip.Period))
	if err := pdf.OutputFileAndClose(tmpPath); err != nil {
		utils.LogError("Failed to write payslip PDF %d: %v", payslip.ID, err)
		utils.InternalServerError(c, "Failed to generate PDF", nil)
		return
	}
	defer os.Remove(tmpPath)

	subject := fmt.Sprintf("Your CruiseLink payslip for %s", payslip.Period)
	body := fmt.Sprintf(`
		<h2>CruiseLink Settlement</h2>
		<p>Dear %s,</p>
		<p>Your payslip for %s is attached. Net payment: %s.</p>
	`, payslip.Profile.Name, payslip.Period, payslip.NetPayment.String())

	if err := utils.SendEmailWithAttachment(payslip.Profile.Email, subject, body, tmpPath); err != nil {
		utils.LogError("Payslip %d delivery failed, remains APPROVED for retry: %v", payslip.ID, err)
		utils.Error(c, 503, "Delivery failed, retry later", err.Error())
		return
	}

	sent, err := settlement.MarkSent(payslip.ID, adminModel.ID)
	if err != nil {
		utils.LogError("Failed to mark payslip %d sent: %v", payslip.ID, err)
		utils.HandleError(c, err)
		return
	}

	utils.LogInfo("Payslip %d delivered to %s", sent.ID, payslip.Profile.Email)
	utils.Success(c, "Payslip delivered", payslipResponse(sent))
}

func buildPayslipPDF(payslip *models.AffiliatePayslip) (*gofpdf.Fpdf, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "CruiseLink")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Affiliate Settlement Statement")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "PAYSLIP")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Period: "+payslip.Period)
	pdf.Cell(60, 8, "Status: "+string(payslip.Status))
	pdf.Ln(8)
	pdf.Cell(60, 8, "Payslip ID: "+strconv.Itoa(int(payslip.ID)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Paid To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, payslip.Profile.Name+" ("+string(payslip.Profile.Type)+")")
	pdf.Ln(6)
	pdf.Cell(100, 8, payslip.Profile.Email)
	pdf.Ln(6)
	if payslip.BankName != nil && payslip.BankAccountNo != nil {
		pdf.Cell(100, 8, *payslip.BankName+" "+*payslip.BankAccountNo)
	} else {
		pdf.Cell(100, 8, "Bank details on file: MISSING - manual follow-up required")
	}
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Amount", "1", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)

	rows := []struct {
		label string
		value string
	}{
		{"Confirmed sales", strconv.Itoa(payslip.SaleCount)},
		{"Total sales amount", payslip.TotalSales.String()},
		{"Gross commission", payslip.TotalCommission.String()},
		{"Withholding (3.3%)", payslip.TotalWithholding.Neg().String()},
	}
	for _, row := range rows {
		pdf.CellFormat(90, 8, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, row.value, "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(90, 8, "Net payment", "1", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, payslip.NetPayment.String(), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	return pdf, nil
}
