package api

import "github.com/gofiber/fiber/v2"

func MapControllers(app *fiber.App, baseURL string) {
	api := app.Group(baseURL).Name("API")
	{
		surveys := api.Group("/surveys").Name("Surveys API")
		{
			surveys.Get("/", listSurveys)
			surveys.Post("/:surveyId/responses", startResponse)
			surveys.Get("/:surveyId/scenarios/:scenarioId/next", getNextScenario)
		}

		responses := api.Group("/responses").Name("Responses API")
		{
			responses.Get("/:responseId", getResponse)
			responses.Put("/:responseId/answers", saveSurveyAnswers)
			responses.Get("/:responseId/completion", getResponseCompletion)

			scenarios := responses.Group("/:responseId/scenarios/:scenarioId").Name("Scenarios API")
			{
				scenarios.Get("/", getScenario)
				scenarios.Put("/answers", saveScenarioAnswers)
				scenarios.Put("/units", saveUnitSelection)
				scenarios.Get("/units/:unitId", getUnitSelection)
				scenarios.Delete("/units/:unitId", clearUnitSelection)
			}
		}
	}
}
