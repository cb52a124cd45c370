package api

import (
	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"git.solsynth.dev/hypernet/survey/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
)

func currentAccount(c *fiber.Ctx) (exts.Account, error) {
	if err := exts.EnsureAuthenticated(c); err != nil {
		return exts.Account{}, err
	}
	return c.Locals("user").(exts.Account), nil
}

// ownedResponse loads a response of the caller, still checking the survey
// groups in case they changed since the response was started.
func ownedResponse(c *fiber.Ctx) (exts.Account, models.SurveyResponse, error) {
	var response models.SurveyResponse
	user, err := currentAccount(c)
	if err != nil {
		return user, response, err
	}
	id, err := exts.ParamID(c, "responseId")
	if err != nil {
		return user, response, err
	}
	if response, err = services.GetResponse(database.C, id, user.ID); err != nil {
		return user, response, exts.ErrorToHttp(err)
	}
	if err := services.EnsureSurveyAccess(response.Survey, user.Groups); err != nil {
		return user, response, exts.ErrorToHttp(err)
	}
	return user, response, nil
}

func responseScenario(c *fiber.Ctx, response models.SurveyResponse) (models.Scenario, error) {
	id, err := exts.ParamID(c, "scenarioId")
	if err != nil {
		return models.Scenario{}, err
	}
	scenario, err := services.GetScenario(database.C, response.SurveyID, id)
	return scenario, exts.ErrorToHttp(err)
}

func scenarioID(scenario *models.Scenario) *uint {
	if scenario == nil {
		return nil
	}
	return &scenario.ID
}
