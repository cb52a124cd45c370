package services

import (
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// IsResponseCompleted is recomputed from storage on every call. Required
// survey questions are checked first, then every scenario must be complete.
func IsResponseCompleted(tx *gorm.DB, response models.SurveyResponse) (bool, error) {
	required, err := RequiredQuestionsFor(tx, models.QuestionKindSurvey, response.SurveyID)
	if err != nil {
		return false, err
	}
	if len(required) > 0 {
		answered, err := AnsweredKeys(tx, response.ID, questionIDs(required))
		if err != nil {
			return false, err
		}
		if !lo.EveryBy(required, func(item models.Question) bool {
			return answered[AnswerKey{ResponseID: response.ID, QuestionID: item.ID}]
		}) {
			return false, nil
		}
	}

	scenarios, err := ScenariosOf(tx, response.SurveyID)
	if err != nil {
		return false, err
	}
	for _, scenario := range scenarios {
		status, err := GetScenarioStatus(tx, response, scenario)
		if err != nil {
			return false, err
		}
		if !status.ScenarioCompleted {
			return false, nil
		}
	}

	return true, nil
}

type ResponseProgress struct {
	Completed bool                    `json:"completed"`
	Scenarios map[uint]ScenarioStatus `json:"scenarios"`
}

// GetResponseProgress reports the status of every scenario alongside the
// overall verdict, without short-circuiting.
func GetResponseProgress(tx *gorm.DB, response models.SurveyResponse) (ResponseProgress, error) {
	progress := ResponseProgress{Scenarios: make(map[uint]ScenarioStatus)}

	scenarios, err := ScenariosOf(tx, response.SurveyID)
	if err != nil {
		return progress, err
	}
	for _, scenario := range scenarios {
		status, err := GetScenarioStatus(tx, response, scenario)
		if err != nil {
			return progress, err
		}
		progress.Scenarios[scenario.ID] = status
	}

	if progress.Completed, err = IsResponseCompleted(tx, response); err != nil {
		return progress, err
	}
	return progress, nil
}
