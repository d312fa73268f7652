package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unisupport/internal/app/controllers"
	"github.com/yigit/unisupport/internal/app/models"
	"github.com/yigit/unisupport/internal/middleware"
)

// Controllers groups every HTTP controller mounted by SetupRouter
type Controllers struct {
	Auth        *controllers.AuthController
	Student     *controllers.StudentController
	Admin       *controllers.AdminController
	Faculty     *controllers.FacultyController
	Account     *controllers.AccountController
	Chat        *controllers.ChatController
	Issue       *controllers.IssueController
	Feedback    *controllers.FeedbackController
	Instruction *controllers.InstructionController
	Health      *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/health", ctrl.Health.Health)
	router.NoRoute(middleware.NoRoute())

	api := router.Group("/api")

	// --- Public Auth routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/login", ctrl.Auth.Login)
	}

	// --- Authenticated Routes Group ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.Authenticate())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)
	staff := authMiddleware.RoleRequired(models.RoleAdmin, models.RoleFaculty)
	studentOnly := authMiddleware.RoleRequired(models.RoleStudent)
	studentOrAdmin := authMiddleware.RoleRequired(models.RoleStudent, models.RoleAdmin)

	authenticated.POST("/auth/logout", ctrl.Auth.Logout)
	authenticated.GET("/user", ctrl.Auth.CurrentUser)

	students := authenticated.Group("/students")
	{
		students.GET("", staff, ctrl.Student.ListStudents)
		students.POST("", adminOnly, ctrl.Student.CreateStudent)
		students.GET("/:id", staff, ctrl.Student.GetStudent)
		students.PUT("/:id", adminOnly, ctrl.Student.UpdateStudent)
		students.DELETE("/:id", adminOnly, ctrl.Student.DeleteStudent)

		// Ownership is checked by the service
		students.GET("/profile/:id", studentOrAdmin, ctrl.Student.GetProfile)
		students.PUT("/profile/:id", studentOrAdmin, ctrl.Student.UpdateProfile)
	}

	admins := authenticated.Group("/admins", adminOnly)
	{
		admins.GET("", ctrl.Admin.ListAdmins)
		admins.POST("", ctrl.Admin.CreateAdmin)
		admins.GET("/:id", ctrl.Admin.GetAdmin)
		admins.DELETE("/:id", ctrl.Admin.DeleteAdmin)
	}

	faculty := authenticated.Group("/faculty", adminOnly)
	{
		faculty.GET("", ctrl.Faculty.ListFaculty)
		faculty.POST("", ctrl.Faculty.CreateFaculty)
		faculty.GET("/:id", ctrl.Faculty.GetFaculty)
		faculty.DELETE("/:id", ctrl.Faculty.DeleteFaculty)
	}

	accounts := authenticated.Group("/accounts", adminOnly)
	{
		accounts.GET("", ctrl.Account.ListAccounts)
		accounts.PATCH("/:id/status", ctrl.Account.UpdateStatus)
	}

	chats := authenticated.Group("/chats")
	{
		chats.GET("/student/:studentId", studentOrAdmin, ctrl.Chat.ListStudentChats)
		chats.POST("/student/:studentId", studentOnly, ctrl.Chat.CreateChat)
		chats.GET("/:chatId", studentOrAdmin, ctrl.Chat.GetChat)
		chats.PATCH("/:chatId", studentOnly, ctrl.Chat.UpdateChat)
		chats.DELETE("/:chatId", studentOrAdmin, ctrl.Chat.DeleteChat)
		chats.POST("/:chatId/messages", studentOnly, ctrl.Chat.AddMessage)
	}

	issues := authenticated.Group("/issues")
	{
		issues.GET("", adminOnly, ctrl.Issue.ListIssues)
		issues.GET("/student/:studentId", studentOrAdmin, ctrl.Issue.ListStudentIssues)
		issues.POST("/student/:studentId", studentOnly, ctrl.Issue.CreateIssue)
		issues.GET("/:id", studentOrAdmin, ctrl.Issue.GetIssue)
		issues.PUT("/:id", adminOnly, ctrl.Issue.UpdateIssue)
		issues.DELETE("/:id", adminOnly, ctrl.Issue.DeleteIssue)
		issues.PATCH("/:id/assign", adminOnly, ctrl.Issue.AssignIssue)
	}

	feedback := authenticated.Group("/feedback")
	{
		feedback.POST("", studentOnly, ctrl.Feedback.CreateFeedback)
		feedback.GET("", staff, ctrl.Feedback.ListFeedback)
		feedback.GET("/stats", staff, ctrl.Feedback.Stats)
		feedback.GET("/:id", staff, ctrl.Feedback.GetFeedback)
	}

	instructions := authenticated.Group("/chatbot-instructions")
	{
		instructions.GET("", ctrl.Instruction.ListInstructions)
		instructions.GET("/:id", ctrl.Instruction.GetInstruction)
		instructions.POST("", adminOnly, ctrl.Instruction.CreateInstruction)
		instructions.PUT("/:id", adminOnly, ctrl.Instruction.UpdateInstruction)
		instructions.DELETE("/:id", adminOnly, ctrl.Instruction.DeleteInstruction)
	}
}
