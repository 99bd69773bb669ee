package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"livestock-farm-api-server/config"
	"livestock-farm-api-server/internal/api/handlers"
	"livestock-farm-api-server/internal/api/middleware"
	"livestock-farm-api-server/internal/notifier"
	"livestock-farm-api-server/internal/reports"
	"livestock-farm-api-server/internal/socket"
	"livestock-farm-api-server/internal/storage"
)

// SetupRouter wires every endpoint. Everything except registration, login,
// the health probe and the websocket stream sits behind JWT authentication.
func SetupRouter(db *mongo.Database, cfg config.Config, hub *socket.Hub, notif *notifier.Notifier, uploader *storage.Uploader) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}

	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	secret := []byte(cfg.JWT.Secret)

	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	animalHandler := &handlers.AnimalHandler{DB: db}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	breedHandler := &handlers.BreedHandler{DB: db}
	healthHandler := &handlers.HealthHandler{DB: db, Notifier: notif}
	vaccinationHandler := &handlers.VaccinationHandler{DB: db, Notifier: notif}
	breedingHandler := &handlers.BreedingHandler{DB: db}
	birthHandler := &handlers.BirthHandler{DB: db}
	transactionHandler := &handlers.TransactionHandler{DB: db}
	financialHandler := &handlers.FinancialHandler{DB: db}
	inventoryHandler := &handlers.InventoryHandler{DB: db, Notifier: notif}
	feedingHandler := &handlers.FeedingHandler{DB: db, Notifier: notif}
	feedTemplateHandler := &handlers.FeedTemplateHandler{DB: db}
	equipmentHandler := &handlers.EquipmentHandler{DB: db, Notifier: notif}
	notificationHandler := &handlers.NotificationHandler{DB: db, Hub: hub, Secret: secret}
	reminderHandler := &handlers.ReminderHandler{DB: db}
	reportHandler := &handlers.ReportHandler{DB: db, Registry: reports.NewRegistry()}
	backupHandler := &handlers.BackupHandler{DB: db, Uploader: uploader}

	api := r.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	// The websocket stream authenticates through a token query parameter.
	api.GET("/notifications/stream", notificationHandler.Stream)

	protected := api.Group("")
	protected.Use(middleware.Authenticate(secret))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.PUT("/auth/me", authHandler.UpdateMe)

		animals := protected.Group("/animals")
		{
			animals.POST("", animalHandler.CreateAnimal)
			animals.GET("", animalHandler.GetAnimals)
			animals.GET("/:id", animalHandler.GetAnimalByID)
			animals.PUT("/:id", animalHandler.UpdateAnimal)
			animals.DELETE("/:id", animalHandler.DeleteAnimal)
			animals.POST("/:id/weights", animalHandler.AddWeight)
			animals.PUT("/:id/restriction", animalHandler.UpdateRestriction)
			animals.GET("/:id/pedigree", animalHandler.GetPedigree)
		}

		categories := protected.Group("/animal-categories")
		{
			categories.POST("", categoryHandler.CreateCategory)
			categories.GET("", categoryHandler.GetCategories)
			categories.GET("/:id", categoryHandler.GetCategoryByID)
			categories.PUT("/:id", categoryHandler.UpdateCategory)
			categories.DELETE("/:id", categoryHandler.DeleteCategory)
		}

		breeds := protected.Group("/animal-breeds")
		{
			breeds.POST("", breedHandler.CreateBreed)
			breeds.GET("", breedHandler.GetBreeds)
			breeds.GET("/:id", breedHandler.GetBreedByID)
			breeds.PUT("/:id", breedHandler.UpdateBreed)
			breeds.DELETE("/:id", breedHandler.DeleteBreed)
		}

		health := protected.Group("/health-events")
		{
			health.POST("", healthHandler.CreateHealthEvent)
			health.GET("", healthHandler.GetHealthEvents)
			health.GET("/:id", healthHandler.GetHealthEventByID)
			health.PUT("/:id", healthHandler.UpdateHealthEvent)
			health.DELETE("/:id", healthHandler.DeleteHealthEvent)
		}

		vaccinations := protected.Group("/vaccinations")
		{
			vaccinations.POST("", vaccinationHandler.CreateVaccination)
			vaccinations.GET("", vaccinationHandler.GetVaccinations)
			vaccinations.GET("/:id", vaccinationHandler.GetVaccinationByID)
			vaccinations.POST("/:id/complete", vaccinationHandler.CompleteVaccination)
			vaccinations.PUT("/:id", vaccinationHandler.UpdateVaccination)
			vaccinations.DELETE("/:id", vaccinationHandler.DeleteVaccination)
		}

		breeding := protected.Group("/breeding")
		{
			breeding.POST("", breedingHandler.CreateBreedingEvent)
			breeding.GET("", breedingHandler.GetBreedingEvents)
			breeding.GET("/:id", breedingHandler.GetBreedingEventByID)
			breeding.PUT("/:id", breedingHandler.UpdateBreedingEvent)
			breeding.DELETE("/:id", breedingHandler.DeleteBreedingEvent)
			breeding.POST("/:id/record-birth", breedingHandler.RecordBirth)
		}

		births := protected.Group("/births")
		{
			births.POST("", birthHandler.CreateBirth)
			births.GET("", birthHandler.GetBirths)
			births.GET("/:id", birthHandler.GetBirthByID)
			births.PUT("/:id", birthHandler.UpdateBirth)
			births.DELETE("/:id", birthHandler.DeleteBirth)
			births.POST("/:id/register-offspring", birthHandler.RegisterOffspring)
		}

		transactions := protected.Group("/transactions")
		{
			transactions.POST("", transactionHandler.CreateTransaction)
			transactions.GET("", transactionHandler.GetTransactions)
			transactions.GET("/:id", transactionHandler.GetTransactionByID)
			transactions.PUT("/:id", transactionHandler.UpdateTransaction)
			transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
		}

		financial := protected.Group("/financial-records")
		{
			financial.POST("", financialHandler.CreateRecord)
			financial.GET("", financialHandler.GetRecords)
			financial.GET("/summary", financialHandler.GetSummary)
			financial.GET("/:id", financialHandler.GetRecordByID)
			financial.PUT("/:id", financialHandler.UpdateRecord)
			financial.DELETE("/:id", financialHandler.DeleteRecord)
		}

		inventory := protected.Group("/inventory")
		{
			inventory.POST("", inventoryHandler.CreateItem)
			inventory.GET("", inventoryHandler.GetItems)
			inventory.GET("/:id", inventoryHandler.GetItemByID)
			inventory.PUT("/:id", inventoryHandler.UpdateItem)
			inventory.DELETE("/:id", inventoryHandler.DeleteItem)
			inventory.POST("/:id/transactions", inventoryHandler.CreateTransaction)
			inventory.GET("/:id/transactions", inventoryHandler.GetTransactions)
			inventory.DELETE("/:id/transactions/:txId", inventoryHandler.DeleteTransaction)
		}

		feeding := protected.Group("/feeding-records")
		{
			feeding.POST("", feedingHandler.CreateRecord)
			feeding.POST("/bulk", feedingHandler.CreateRecordsBulk)
			feeding.GET("", feedingHandler.GetRecords)
			feeding.GET("/:id", feedingHandler.GetRecordByID)
			feeding.DELETE("/:id", feedingHandler.DeleteRecord)
		}

		schedules := protected.Group("/feeding-schedules")
		{
			schedules.POST("", feedingHandler.CreateSchedule)
			schedules.GET("", feedingHandler.GetSchedules)
			schedules.GET("/:id", feedingHandler.GetScheduleByID)
			schedules.PUT("/:id", feedingHandler.UpdateSchedule)
			schedules.DELETE("/:id", feedingHandler.DeleteSchedule)
		}

		templates := protected.Group("/feed-templates")
		{
			templates.POST("", feedTemplateHandler.CreateTemplate)
			templates.GET("", feedTemplateHandler.GetTemplates)
			templates.GET("/:id", feedTemplateHandler.GetTemplateByID)
			templates.PUT("/:id", feedTemplateHandler.UpdateTemplate)
			templates.DELETE("/:id", feedTemplateHandler.DeleteTemplate)
			templates.POST("/:id/calculate", feedTemplateHandler.CalculateFeed)
		}

		equipment := protected.Group("/equipment-usages")
		{
			equipment.POST("", equipmentHandler.CreateUsage)
			equipment.GET("", equipmentHandler.GetUsages)
			equipment.GET("/:id", equipmentHandler.GetUsageByID)
			equipment.DELETE("/:id", equipmentHandler.DeleteUsage)
		}

		notifications := protected.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		reminders := protected.Group("/reminders")
		{
			reminders.GET("", reminderHandler.GetReminders)
			reminders.PUT("/:id/done", reminderHandler.MarkDone)
			reminders.DELETE("/:id", reminderHandler.DeleteReminder)
		}

		reportsGroup := protected.Group("/reports")
		{
			reportsGroup.GET("/saved", reportHandler.GetSavedReports)
			reportsGroup.POST("/saved", reportHandler.CreateSavedReport)
			reportsGroup.DELETE("/saved/:id", reportHandler.DeleteSavedReport)
			reportsGroup.GET("/:type", reportHandler.GetReport)
		}

		backups := protected.Group("/backups")
		{
			backups.POST("", backupHandler.CreateBackup)
			backups.GET("", backupHandler.GetBackups)
			backups.POST("/:id/restore", backupHandler.RestoreBackup)
			backups.DELETE("/:id", backupHandler.DeleteBackup)
		}
	}

	return r
}
