package routes

import (
	"lostfound/backend/config"
	"lostfound/backend/controllers"
	"lostfound/backend/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	authMiddleware := middleware.AuthMiddleware(cfg)

	productController := controllers.NewProductController(db, cfg)
	products := app.Group("/api/products")
	products.Get("/", productController.List)
	products.Get("/search", productController.Search)
	products.Get("/counts", productController.Counts)
	products.Get("/categories", productController.Categories)
	products.Get("/me/counts", authMiddleware, productController.MyCounts)
	products.Post("/", authMiddleware, productController.Create)
	products.Get("/:id", productController.Get)
	products.Put("/:id", authMiddleware, productController.Update)
	products.Delete("/:id", authMiddleware, productController.Delete)
	products.Post("/:id/report", authMiddleware, productController.Report)

	commentController := controllers.NewCommentController(db, cfg)
	products.Get("/:id/comments", commentController.GetThread)
	products.Get("/:id/comments/all", commentController.GetFullThread)
	products.Post("/:id/comments", authMiddleware, commentController.Create)
	products.Post("/:id/comments/:commentId/report", authMiddleware, commentController.Report)
}
