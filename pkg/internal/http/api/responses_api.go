package api

import (
	"time"

	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"git.solsynth.dev/hypernet/survey/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

type answersRequest struct {
	Answers map[uint]jsoniter.RawMessage `json:"answers" validate:"required"`
}

func getResponse(c *fiber.Ctx) error {
	_, response, err := ownedResponse(c)
	if err != nil {
		return err
	}

	questions, err := services.QuestionsFor(database.C, models.QuestionKindSurvey, response.SurveyID)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	answers, err := services.ListAnswers(database.C, response.ID, lo.Map(questions, func(item models.Question, _ int) uint {
		return item.ID
	}))
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	completed, err := services.IsResponseCompleted(database.C, response)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	first, err := services.FirstScenario(database.C, response.SurveyID)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(fiber.Map{
		"response":          response,
		"questions":         questions,
		"answers":           answers,
		"completed":         completed,
		"first_scenario_id": scenarioID(first),
	})
}

func saveSurveyAnswers(c *fiber.Ctx) error {
	_, response, err := ownedResponse(c)
	if err != nil {
		return err
	}

	var data answersRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	values, err := services.ParseAnswerInputs(database.C, models.QuestionKindSurvey, response.SurveyID, data.Answers)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	if err := services.SaveSurveyAnswers(database.C, response, values, time.Now()); err != nil {
		return exts.ErrorToHttp(err)
	}

	completed, err := services.IsResponseCompleted(database.C, response)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(fiber.Map{"completed": completed})
}

func getResponseCompletion(c *fiber.Ctx) error {
	_, response, err := ownedResponse(c)
	if err != nil {
		return err
	}

	progress, err := services.GetResponseProgress(database.C, response)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(progress)
}
