package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"apparel-designer/app/controller"
	"apparel-designer/logging"
)

const requestTimeout = 60 * time.Second

// Controllers groups every HTTP controller the router mounts
type Controllers struct {
	Catalog *controller.CatalogController
	Session *controller.SessionController
	Image   *controller.ImageController
	Preview *controller.PreviewController
	Capture *controller.CaptureController
	Chat    *controller.ChatController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// New builds the chi router
func New(controllers *Controllers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/ping", pingHandler)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", controllers.Catalog.GetCatalog)
		r.Get("/sports/{sportID}/leagues", controllers.Catalog.GetLeagues)
		r.Get("/sports/{sportID}/leagues/{leagueID}/teams", controllers.Catalog.GetTeams)
	})

	r.Post("/sessions", controllers.Session.CreateSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", controllers.Session.GetSession)
		r.Delete("/", controllers.Session.DeleteSession)

		// Wizard
		r.Put("/product", controllers.Session.SetProduct)
		r.Put("/color", controllers.Session.SetColor)
		r.Put("/text-color", controllers.Session.SetTextColor)
		r.Put("/sport", controllers.Session.SetSport)
		r.Put("/league", controllers.Session.SetLeague)
		r.Put("/team", controllers.Session.SetTeam)
		r.Put("/name", controllers.Session.SetName)
		r.Post("/step/next", controllers.Session.NextStep)
		r.Post("/step/prev", controllers.Session.PrevStep)

		r.Post("/image", controllers.Image.UploadImage)
		r.Delete("/image", controllers.Image.ClearImage)

		r.Get("/preview", controllers.Preview.GetPreview)
		r.Get("/preview.svg", controllers.Preview.GetPreviewSVG)
		r.Get("/preview.png", controllers.Preview.GetPreviewPNG)
		r.Post("/export", controllers.Preview.ExportDesign)

		r.Route("/capture", func(r chi.Router) {
			r.Get("/", controllers.Capture.GetStatus)
			r.Post("/open", controllers.Capture.Open)
			r.Post("/frames", controllers.Capture.PushFrame)
			r.Post("/shot", controllers.Capture.Shot)
			r.Post("/retake", controllers.Capture.Retake)
			r.Post("/accept", controllers.Capture.Accept)
			r.Post("/close", controllers.Capture.Close)
		})

		r.Get("/chat", controllers.Chat.GetHistory)
		r.Post("/chat", controllers.Chat.SendMessage)
		r.Delete("/chat", controllers.Chat.ClearHistory)
	})

	return r
}
