package api

import (
	"time"

	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/survey/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
)

func listSurveys(c *fiber.Ctx) error {
	user, err := currentAccount(c)
	if err != nil {
		return err
	}

	surveys, err := services.ListAccountSurveys(database.C, user.ID, user.Groups, time.Now())
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(lo.Filter(surveys, func(item services.SurveySummary, _ int) bool {
		return item.Active
	}))
}

func startResponse(c *fiber.Ctx) error {
	user, err := currentAccount(c)
	if err != nil {
		return err
	}
	surveyId, err := exts.ParamID(c, "surveyId")
	if err != nil {
		return err
	}

	var data struct {
		ResponseID *uint `json:"response_id" validate:"omitempty,min=1"`
	}
	if len(c.Body()) > 0 {
		if err := exts.BindAndValidate(c, &data); err != nil {
			return err
		}
	}

	survey, err := services.GetSurvey(database.C, surveyId)
	if err != nil {
		return exts.ErrorToHttp(err)
	} else if err := services.EnsureSurveyAccess(survey, user.Groups); err != nil {
		return exts.ErrorToHttp(err)
	}

	response, err := services.StartResponse(database.C, survey, user.ID, data.ResponseID, time.Now())
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	first, err := services.FirstScenario(database.C, survey.ID)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(fiber.Map{
		"response":          response,
		"first_scenario_id": scenarioID(first),
	})
}

func getNextScenario(c *fiber.Ctx) error {
	user, err := currentAccount(c)
	if err != nil {
		return err
	}
	surveyId, err := exts.ParamID(c, "surveyId")
	if err != nil {
		return err
	}
	scenarioId, err := exts.ParamID(c, "scenarioId")
	if err != nil {
		return err
	}

	survey, err := services.GetSurvey(database.C, surveyId)
	if err != nil {
		return exts.ErrorToHttp(err)
	} else if err := services.EnsureSurveyAccess(survey, user.Groups); err != nil {
		return exts.ErrorToHttp(err)
	}

	next, err := services.NextScenarioAfter(database.C, survey.ID, scenarioId)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(fiber.Map{"next_scenario_id": scenarioID(next)})
}
