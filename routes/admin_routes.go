package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/controllers"
	"github.com/harborline/CruiseLink/middleware"
)

// initAdminRoutes initializes all HQ admin routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	{
		admin.POST("/login", controllers.AdminLogin)

		admin.Use(middleware.AdminAuthMiddleware())
		{
			// Onboarding and hierarchy
			admin.GET("/profiles", controllers.ListProfiles)
			admin.GET("/profiles/:id", controllers.GetProfile)
			admin.PATCH("/profiles/:id/approve", controllers.ApproveProfile)
			admin.PATCH("/profiles/:id/terminate", controllers.TerminateProfile)
			admin.POST("/relations", controllers.AttachAgent)
			admin.PATCH("/relations/agent/:id/detach", controllers.DetachAgent)
			admin.GET("/relations/agent/:id/history", controllers.ListRelationHistory)

			// Leads
			admin.POST("/leads", controllers.CreateLead)
			admin.GET("/leads", controllers.ListLeads)
			admin.GET("/leads/:id", controllers.GetLead)
			admin.PATCH("/leads/:id/assign", controllers.AssignLead)
			admin.PATCH("/leads/:id/recall", controllers.RecallLead)
			admin.POST("/leads/recall", controllers.RecallLeads)

			// Pricing administration
			admin.POST("/tiers", controllers.CreateTier)
			admin.GET("/tiers", controllers.ListTiers)
			admin.PUT("/tiers/:id", controllers.UpdateTier)
			admin.DELETE("/tiers/:id", controllers.DeleteTier)
			admin.POST("/commission/preview", controllers.ComputeCommission)

			// Sale workflow
			admin.GET("/sales", controllers.ListSales)
			admin.GET("/sales/:id", controllers.GetSale)
			admin.PATCH("/sales/:id/approve", controllers.ApproveSale)
			admin.PATCH("/sales/:id/reject", controllers.RejectSale)
			admin.PATCH("/sales/:id/confirm", controllers.ConfirmSale)

			// Settlement
			admin.POST("/settlements/run", controllers.RunSettlement)
			admin.POST("/settlements/run-all", controllers.RunSettlementAll)
			admin.GET("/payslips", controllers.ListPayslips)
			admin.GET("/payslips/:id", controllers.GetPayslip)
			admin.PATCH("/payslips/:id/approve", controllers.ApproveSettlement)
			admin.GET("/payslips/:id/pdf", controllers.DownloadPayslipPDF)
			admin.POST("/payslips/:id/deliver", controllers.DeliverPayslip)
			admin.GET("/settlements/export/excel", controllers.DownloadSettlementExcel)
		}
	}
}
