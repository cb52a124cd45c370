package services

import (
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type ScenarioStatus struct {
	IsWeighted                     bool `json:"is_weighted"`
	CoinsRequired                  bool `json:"coins_required"`
	CoinsAssigned                  int  `json:"coins_assigned"`
	CoinsAvailable                 int  `json:"coins_available"`
	QuestionsCompleted             bool `json:"questions_completed"`
	PlanningUnitQuestionsCompleted bool `json:"planning_unit_questions_completed"`
	CoinsCompleted                 bool `json:"coins_completed"`
	AreasSelected                  int  `json:"areas_selected"`
	ScenarioCompleted              bool `json:"scenario_completed"`
}

// GetScenarioStatus computes the progress of a response within one scenario.
// Nothing is cached, every call reflects the stored answers and coins.
// CoinsAvailable goes negative on over-allocation and is left that way.
func GetScenarioStatus(tx *gorm.DB, response models.SurveyResponse, scenario models.Scenario) (ScenarioStatus, error) {
	status := ScenarioStatus{
		IsWeighted:    scenario.IsWeighted,
		CoinsRequired: scenario.IsWeighted && scenario.RequireAllCoinsUsed,
	}

	var err error
	if status.CoinsAssigned, err = SumAssigned(tx, response.ID, scenario.ID); err != nil {
		return status, err
	}
	status.CoinsAvailable = scenario.TotalCoins - status.CoinsAssigned
	status.CoinsCompleted = !status.CoinsRequired || status.CoinsAssigned == scenario.TotalCoins

	if status.QuestionsCompleted, err = scenarioQuestionsCompleted(tx, response, scenario); err != nil {
		return status, err
	}
	if status.PlanningUnitQuestionsCompleted, err = unitQuestionsCompleted(tx, response, scenario); err != nil {
		return status, err
	}
	if status.AreasSelected, err = SelectedUnitCount(tx, response.ID, scenario.ID); err != nil {
		return status, err
	}

	status.ScenarioCompleted = status.QuestionsCompleted &&
		status.PlanningUnitQuestionsCompleted &&
		status.CoinsCompleted

	return status, nil
}

func scenarioQuestionsCompleted(tx *gorm.DB, response models.SurveyResponse, scenario models.Scenario) (bool, error) {
	required, err := RequiredQuestionsFor(tx, models.QuestionKindScenario, scenario.ID)
	if err != nil || len(required) == 0 {
		return err == nil, err
	}
	answered, err := AnsweredKeys(tx, response.ID, questionIDs(required))
	if err != nil {
		return false, err
	}
	return lo.EveryBy(required, func(item models.Question) bool {
		return answered[AnswerKey{ResponseID: response.ID, QuestionID: item.ID}]
	}), nil
}

// Every unit of the family must answer every required unit question, an
// empty family is complete.
func unitQuestionsCompleted(tx *gorm.DB, response models.SurveyResponse, scenario models.Scenario) (bool, error) {
	if !scenario.IsSpatial {
		return true, nil
	}
	required, err := RequiredQuestionsFor(tx, models.QuestionKindPlanningUnit, scenario.ID)
	if err != nil || len(required) == 0 {
		return err == nil, err
	}
	units, err := ScenarioUnitIDs(tx, scenario)
	if err != nil || len(units) == 0 {
		return err == nil, err
	}
	answered, err := AnsweredKeys(tx, response.ID, questionIDs(required))
	if err != nil {
		return false, err
	}
	for _, unit := range units {
		for _, question := range required {
			if !answered[AnswerKey{ResponseID: response.ID, QuestionID: question.ID, PlanningUnitID: unit}] {
				return false, nil
			}
		}
	}
	return true, nil
}

func questionIDs(questions []models.Question) []uint {
	return lo.Map(questions, func(item models.Question, _ int) uint {
		return item.ID
	})
}
