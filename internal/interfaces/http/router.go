package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-import/internal/application/inventory"
	"github.com/jhoicas/stock-import/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Import           *inventory.ImportUseCase
	Sessions         *inventory.SessionStore
	RegisterMovement *inventory.RegisterMovementUseCase
	Export           *inventory.ExportUseCase
	Store            inventory.Persistence
	Renderer         inventory.ReportRenderer
	SheetToCSV       SheetConverter
	Observer         MovementObserver
	MaxUploadBytes   int
	JWTSecret        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas: Bearer Token + rol de inventario
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero))
	invGroup := protected.Group("/inventory")

	// Importación masiva por sesiones
	importHandler := NewImportHandler(deps.Import, deps.Sessions, deps.Renderer, deps.SheetToCSV, deps.MaxUploadBytes)
	imports := invGroup.Group("/imports")
	imports.Post("/", importHandler.Upload)
	imports.Get("/:id", importHandler.Get)
	imports.Post("/:id/commit", importHandler.Commit)
	imports.Delete("/:id", importHandler.Cancel)
	imports.Get("/:id/report.pdf", importHandler.ReportPDF)

	// Movimientos y exportación; sin almacenamiento responden 503 antes del handler
	inventoryHandler := NewInventoryHandler(deps.RegisterMovement, deps.Export, deps.Observer)
	withStore := func(h fiber.Handler) []fiber.Handler {
		if deps.Store == nil {
			return []fiber.Handler{h}
		}
		return []fiber.Handler{RequireStore(deps.Store), h}
	}
	invGroup.Get("/export", withStore(inventoryHandler.Export)...)
	invGroup.Post("/items/:id/movements", withStore(inventoryHandler.RegisterMovement)...)
	invGroup.Get("/items/:id/movements", withStore(inventoryHandler.ListMovements)...)
}
