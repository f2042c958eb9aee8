package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/harborline/CruiseLink/controllers"
	"github.com/harborline/CruiseLink/middleware"
)

// initAffiliateRoutes initializes routes for authenticated affiliates
func initAffiliateRoutes(router *gin.RouterGroup) {
	affiliate := router.Group("/affiliates")
	affiliate.Use(middleware.AffiliateAuthMiddleware())
	{
		affiliate.GET("/me", controllers.GetMyProfile)
		affiliate.GET("/dashboard", controllers.GetDashboard)

		affiliate.GET("/leads", controllers.ListLeads)
		affiliate.GET("/leads/:id", controllers.GetLead)

		affiliate.POST("/sales", controllers.SubmitSale)
		affiliate.GET("/sales", controllers.ListSales)
		affiliate.GET("/sales/:id", controllers.GetSale)
		affiliate.POST("/commission/preview", controllers.ComputeCommission)

		affiliate.GET("/payslips", controllers.ListPayslips)
		affiliate.GET("/payslips/:id", controllers.GetPayslip)
		affiliate.GET("/payslips/:id/pdf", controllers.DownloadPayslipPDF)

		// Manager-only operations
		manager := affiliate.Group("")
		manager.Use(middleware.ManagerMiddleware())
		{
			manager.PATCH("/leads/:id/transfer", controllers.TransferLead)
			manager.PATCH("/leads/:id/recall", controllers.RecallLead)
			manager.POST("/leads/recall", controllers.RecallLeads)
			manager.PATCH("/sales/:id/approve", controllers.ApproveSale)
			manager.PATCH("/sales/:id/reject", controllers.RejectSale)
		}
	}
}
