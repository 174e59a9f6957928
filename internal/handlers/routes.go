package handlers

import "github.com/gin-gonic/gin"

// Register mounts the plantation and season routes on api, which is
// expected to already carry the auth middleware.
func Register(api *gin.RouterGroup, plantation *PlantationHandler, tasks *TaskHandler, seasons *SeasonHandler) {
	p := api.Group("/plantation")
	{
		p.POST("/start", plantation.StartPlantation)
		p.GET("/farms", plantation.ListFarms)
		p.GET("/farm/:farmId", plantation.GetFarm)
		p.PUT("/farm/:farmId", plantation.UpdateFarm)
		p.DELETE("/farm/:farmId", plantation.DeleteFarm)
		p.POST("/farm/:farmId/schedule", plantation.RegenerateSchedule)

		p.GET("/tasks/:farmId", tasks.ListTasks)
		p.GET("/task/:taskId", tasks.GetTask)
		p.PUT("/task/complete/:taskId", tasks.CompleteTask)
		p.POST("/tasks/manual", tasks.CreateManualTask)
		p.PUT("/tasks/:taskId", tasks.UpdateTaskDetails)
		p.PUT("/tasks/:taskId/completion", tasks.UpdateCompletionDetails)
		p.DELETE("/tasks/:taskId", tasks.DeleteTask)
	}

	s := api.Group("/seasons")
	{
		s.POST("", seasons.CreateSeason)
		s.GET("", seasons.ListSeasons)
		s.GET("/farm/:farmId", seasons.ListSeasonsByFarm)
		s.GET("/:seasonId", seasons.GetSeason)
		s.PUT("/:seasonId", seasons.UpdateSeason)
		s.PUT("/:seasonId/end", seasons.EndSeason)
		s.DELETE("/:seasonId", seasons.DeleteSeason)
	}
}
