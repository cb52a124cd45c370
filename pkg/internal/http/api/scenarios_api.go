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

type selectedUnit struct {
	PlanningUnitID uint `json:"planning_unit_id"`
	Coins          *int `json:"coins"`
}

func getScenario(c *fiber.Ctx) error {
	_, response, err := ownedResponse(c)
	if err != nil {
		return err
	}
	scenario, err := responseScenario(c, response)
	if err != nil {
		return err
	}

	status, err := services.GetScenarioStatus(database.C, response, scenario)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	next, err := services.NextScenarioAfter(database.C, response.SurveyID, scenario.ID)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	questions, err := services.QuestionsFor(database.C, models.QuestionKindScenario, scenario.ID)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	unitQuestions, err := services.QuestionsFor(database.C, models.QuestionKindPlanningUnit, scenario.ID)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	ids := lo.Map(append(append([]models.Question{}, questions...), unitQuestions...), func(item models.Question, _ int) uint {
		return item.ID
	})
	answers, err := services.ListAnswers(database.C, response.ID, ids)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	units, err := services.SelectedUnitIDs(database.C, response.ID, scenario.ID)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	assignments, err := services.ListCoinAssignments(database.C, response.ID, scenario.ID)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	coins := lo.SliceToMap(assignments, func(item models.CoinAssignment) (uint, int) {
		return item.PlanningUnitID, item.CoinsAssigned
	})
	selected := lo.Map(units, func(item uint, _ int) selectedUnit {
		out := selectedUnit{PlanningUnitID: item}
		if value, ok := coins[item]; ok {
			out.Coins = lo.ToPtr(value)
		}
		return out
	})

	return c.JSON(fiber.Map{
		"scenario":                scenario,
		"status":                  status,
		"next_scenario_id":        scenarioID(next),
		"questions":               questions,
		"planning_unit_questions": unitQuestions,
		"answers":                 answers,
		"selected_units":          selected,
	})
}

func saveScenarioAnswers(c *fiber.Ctx) error {
	_, response, err := ownedResponse(c)
	if err != nil {
		return err
	}
	scenario, err := responseScenario(c, response)
	if err != nil {
		return err
	}

	var data answersRequest
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	values, err := services.ParseAnswerInputs(database.C, models.QuestionKindScenario, scenario.ID, data.Answers)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	if err := services.SaveScenarioAnswers(database.C, response, scenario, values, time.Now()); err != nil {
		return exts.ErrorToHttp(err)
	}

	return scenarioStatusJSON(c, response, scenario)
}

func saveUnitSelection(c *fiber.Ctx) error {
	_, response, err := ownedResponse(c)
	if err != nil {
		return err
	}
	scenario, err := responseScenario(c, response)
	if err != nil {
		return err
	}

	var data struct {
		Units   []uint                       `json:"units" validate:"required,min=1"`
		Coins   *int                         `json:"coins" validate:"omitempty,min=0"`
		Answers map[uint]jsoniter.RawMessage `json:"answers"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	values, err := services.ParseAnswerInputs(database.C, models.QuestionKindPlanningUnit, scenario.ID, data.Answers)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	if err := services.SaveUnitSelection(database.C, response, scenario, services.UnitSelection{
		Units:   data.Units,
		Coins:   data.Coins,
		Answers: values,
	}, time.Now()); err != nil {
		return exts.ErrorToHttp(err)
	}

	return scenarioStatusJSON(c, response, scenario)
}

func getUnitSelection(c *fiber.Ctx) error {
	_, response, err := ownedResponse(c)
	if err != nil {
		return err
	}
	scenario, err := responseScenario(c, response)
	if err != nil {
		return err
	}
	unitId, err := exts.ParamID(c, "unitId")
	if err != nil {
		return err
	}

	detail, err := services.GetUnitSelection(database.C, response, scenario, unitId)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(detail)
}

func clearUnitSelection(c *fiber.Ctx) error {
	_, response, err := ownedResponse(c)
	if err != nil {
		return err
	}
	scenario, err := responseScenario(c, response)
	if err != nil {
		return err
	}
	unitId, err := exts.ParamID(c, "unitId")
	if err != nil {
		return err
	}

	if err := services.ClearUnitSelection(database.C, response, scenario, unitId, time.Now()); err != nil {
		return exts.ErrorToHttp(err)
	}

	return scenarioStatusJSON(c, response, scenario)
}

func scenarioStatusJSON(c *fiber.Ctx, response models.SurveyResponse, scenario models.Scenario) error {
	status, err := services.GetScenarioStatus(database.C, response, scenario)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	return c.JSON(status)
}
