package admin

import "github.com/gofiber/fiber/v2"

func MapControllers(app *fiber.App, baseURL string) {
	admin := app.Group(baseURL).Name("Admin API")
	{
		admin.Post("/surveys", adminImportSurvey)
		admin.Delete("/surveys/:surveyId", adminDeleteSurvey)
		admin.Post("/families", adminCreateFamily)
		admin.Delete("/accounts/:accountId", adminDeleteAccountData)
		admin.Post("/audit", adminTriggerProgressAudit)
		admin.Get("/questions/:questionId/metric", adminGetChoiceMetric)
	}
}
