package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	swagger "github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/artem13815/finadvisor/api/http/handlers"
)

// Handlers groups everything Register mounts. Recommendations may be nil when
// the feature is disabled.
type Handlers struct {
	Auth            *handlers.AuthHandler
	Chat            *handlers.ChatHandler
	Documents       *handlers.DocumentHandler
	Financial       *handlers.FinancialHandler
	MetaPrompt      *handlers.MetaPromptHandler
	Onboarding      *handlers.OnboardingHandler
	Recommendations *handlers.RecommendationHandler
	Health          *handlers.HealthHandler
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, h Handlers, authMW fiber.Handler) {
	// Health and readiness endpoints for probes/monitoring
	app.Get("/health", h.Health.Health)
	app.Get("/ready", h.Health.Ready)

	api := app.Group("/api")

	a := api.Group("/auth")
	a.Post("/register", h.Auth.Register)
	a.Post("/login", h.Auth.Login)
	a.Post("/token", h.Auth.Token)
	a.Get("/verify", authMW, h.Auth.Verify)
	a.Get("/me", authMW, h.Auth.Me)
	a.Get("/user-data", authMW, h.Auth.UserData)

	ch := api.Group("/chat", authMW)
	ch.Post("/conversations", h.Chat.CreateConversation)
	ch.Get("/conversations", h.Chat.ListConversations)
	ch.Get("/conversations/:id", h.Chat.GetConversation)
	ch.Put("/conversations/:id", h.Chat.UpdateConversation)
	ch.Delete("/conversations/:id", h.Chat.DeleteConversation)
	ch.Get("/conversations/:id/messages", h.Chat.Messages)
	ch.Post("/conversations/:id/messages", h.Chat.Send)
	ch.Post("/chat", h.Chat.Send)

	d := api.Group("/documents", authMW)
	d.Post("/upload", h.Documents.Upload)
	d.Get("/", h.Documents.List)
	d.Get("/:id", h.Documents.Get)
	d.Get("/:id/content", h.Documents.Content)
	d.Put("/:id", h.Documents.Update)
	d.Delete("/:id", h.Documents.Delete)

	f := api.Group("/financial", authMW)
	f.Get("/products", h.Financial.Products)
	f.Get("/products/:id", h.Financial.Product)
	f.Get("/investments", h.Financial.Investments)
	f.Post("/investments", h.Financial.CreateInvestment)
	f.Get("/investments/summary", h.Financial.InvestmentSummary)
	f.Get("/investments/:id", h.Financial.Investment)
	f.Put("/investments/:id", h.Financial.UpdateInvestment)
	f.Delete("/investments/:id", h.Financial.DeleteInvestment)
	f.Get("/transaction-summary", h.Financial.TransactionSummary)
	f.Get("/account", h.Financial.Account)
	f.Get("/credit-history", h.Financial.CreditHistory)
	f.Get("/demographics", h.Financial.Demographics)
	f.Get("/financial-profile", h.Financial.Profile)

	mp := api.Group("/meta-prompt", authMW)
	mp.Get("/", h.MetaPrompt.Get)
	mp.Post("/generate", h.MetaPrompt.Generate)

	ob := api.Group("/onboard", authMW)
	ob.Post("/start", h.Onboarding.Start)
	ob.Post("/update", h.Onboarding.Update)
	ob.Post("/complete", h.Onboarding.Complete)

	if h.Recommendations != nil {
		r := api.Group("/recommendations", authMW)
		r.Get("/", h.Recommendations.Recommend)
		r.Get("/history", h.Recommendations.History)
		r.Post("/feedback", h.Recommendations.Feedback)
	}
}

// RegisterOps mounts /metrics and the Swagger UI.
func RegisterOps(app *fiber.App, gatherer prometheus.Gatherer) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", swagger.HandlerDefault)
}
