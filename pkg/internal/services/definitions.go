package services

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

type OptionDefinition struct {
	Text  string `json:"text" validate:"required,max=255"`
	Order int    `json:"order"`
}

type QuestionDefinition struct {
	Text       string             `json:"text" validate:"required,max=1024"`
	Order      int                `json:"order"`
	Type       string             `json:"type" validate:"required,oneof=text number single_choice multiple_choice"`
	IsRequired bool               `json:"is_required"`
	HelpText   *string            `json:"help_text" validate:"omitempty,max=1024"`
	Options    []OptionDefinition `json:"options" validate:"dive"`
}

type ScenarioDefinition struct {
	Name                  string               `json:"name" validate:"required,max=255"`
	Description           string               `json:"description"`
	Order                 int                  `json:"order"`
	FamilyID              *uint                `json:"family_id"`
	SelectionSnapping     string               `json:"selection_snapping" validate:"omitempty,oneof=default intersects is_within"`
	IsSpatial             *bool                `json:"is_spatial"`
	IsWeighted            *bool                `json:"is_weighted"`
	TotalCoins            *int                 `json:"total_coins" validate:"omitempty,min=0"`
	MinCoinsPerUnit       *int                 `json:"min_coins_per_pu" validate:"omitempty,min=0"`
	MaxCoinsPerUnit       *int                 `json:"max_coins_per_pu" validate:"omitempty,min=0"`
	RequireAllCoinsUsed   *bool                `json:"require_all_coins_used"`
	Questions             []QuestionDefinition `json:"questions" validate:"dive"`
	PlanningUnitQuestions []QuestionDefinition `json:"planning_unit_questions" validate:"dive"`
}

type SurveyDefinition struct {
	Title                  string               `json:"title" validate:"required,max=255"`
	Description            string               `json:"description"`
	StartAt                *time.Time           `json:"start_at"`
	EndAt                  *time.Time           `json:"end_at"`
	AllowMultipleResponses bool                 `json:"allow_multiple_responses"`
	Groups                 []uint               `json:"groups"`
	Questions              []QuestionDefinition `json:"questions" validate:"dive"`
	Scenarios              []ScenarioDefinition `json:"scenarios" validate:"dive"`
}

// NewScenarioFromDefinition fills unset flags with the defaults of a
// spatial, weighted scenario spending exactly 100 coins.
func NewScenarioFromDefinition(survey uint, def ScenarioDefinition) models.Scenario {
	return models.Scenario{
		SurveyID:            survey,
		Name:                def.Name,
		Description:         def.Description,
		Order:               def.Order,
		FamilyID:            def.FamilyID,
		SelectionSnapping:   lo.Ternary(len(def.SelectionSnapping) > 0, def.SelectionSnapping, models.SnappingDefault),
		IsSpatial:           lo.FromPtrOr(def.IsSpatial, true),
		IsWeighted:          lo.FromPtrOr(def.IsWeighted, true),
		TotalCoins:          lo.FromPtrOr(def.TotalCoins, 100),
		MinCoinsPerUnit:     lo.FromPtrOr(def.MinCoinsPerUnit, 1),
		MaxCoinsPerUnit:     lo.FromPtrOr(def.MaxCoinsPerUnit, 100),
		RequireAllCoinsUsed: lo.FromPtrOr(def.RequireAllCoinsUsed, true),
	}
}

func newQuestion(kind models.QuestionKind, parent uint, def QuestionDefinition) (models.Question, error) {
	question := models.Question{
		Kind:       kind,
		ParentID:   parent,
		Text:       def.Text,
		Order:      def.Order,
		Type:       def.Type,
		IsRequired: def.IsRequired,
		HelpText:   def.HelpText,
		Options: lo.Map(def.Options, func(item OptionDefinition, _ int) models.QuestionOption {
			return models.QuestionOption{Text: item.Text, Order: item.Order}
		}),
	}
	if question.IsChoice() && len(question.Options) == 0 {
		return question, fmt.Errorf("%w: choice question %q has no options", ErrValidation, def.Text)
	} else if !question.IsChoice() && len(question.Options) > 0 {
		return question, fmt.Errorf("%w: question %q of type %s cannot have options", ErrValidation, def.Text, def.Type)
	}
	return question, nil
}

func createQuestions(tx *gorm.DB, kind models.QuestionKind, parent uint, defs []QuestionDefinition) error {
	for _, def := range defs {
		question, err := newQuestion(kind, parent, def)
		if err != nil {
			return err
		}
		if err := tx.Create(&question).Error; err != nil {
			return fmt.Errorf("unable to create question: %v", err)
		}
	}
	return nil
}

// ImportSurvey creates a survey with all of its scenarios and questions.
func ImportSurvey(tx *gorm.DB, def SurveyDefinition) (models.Survey, error) {
	survey := models.Survey{
		Title:                  def.Title,
		Description:            def.Description,
		StartAt:                def.StartAt,
		EndAt:                  def.EndAt,
		AllowMultipleResponses: def.AllowMultipleResponses,
		Groups:                 def.Groups,
	}
	if survey.StartAt != nil && survey.EndAt != nil && !survey.StartAt.Before(*survey.EndAt) {
		return survey, fmt.Errorf("%w: survey must start before it ends", ErrValidation)
	}

	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&survey).Error; err != nil {
			return fmt.Errorf("unable to create survey: %v", err)
		}
		if err := createQuestions(tx, models.QuestionKindSurvey, survey.ID, def.Questions); err != nil {
			return err
		}
		for _, item := range def.Scenarios {
			scenario := NewScenarioFromDefinition(survey.ID, item)
			if scenario.MinCoinsPerUnit > scenario.MaxCoinsPerUnit {
				return fmt.Errorf("%w: scenario %q has min coins above max coins", ErrValidation, item.Name)
			}
			if scenario.FamilyID != nil {
				if _, err := GetFamily(tx, *scenario.FamilyID); err != nil {
					return err
				}
			}
			if err := tx.Create(&scenario).Error; err != nil {
				return fmt.Errorf("unable to create scenario: %v", err)
			}
			if err := createQuestions(tx, models.QuestionKindScenario, scenario.ID, item.Questions); err != nil {
				return err
			}
			if err := createQuestions(tx, models.QuestionKindPlanningUnit, scenario.ID, item.PlanningUnitQuestions); err != nil {
				return err
			}
			survey.Scenarios = append(survey.Scenarios, scenario)
		}
		return nil
	})
	if err != nil {
		return survey, err
	}

	InvalidateSurveyListing()
	return survey, nil
}

// DeleteSurvey removes the survey and everything it owns: scenarios,
// questions, options, responses, answers and coin assignments.
func DeleteSurvey(tx *gorm.DB, survey models.Survey) error {
	err := tx.Transaction(func(tx *gorm.DB) error {
		var scenarios []uint
		if err := tx.Model(&models.Scenario{}).Where("survey_id = ?", survey.ID).Pluck("id", &scenarios).Error; err != nil {
			return err
		}
		var responses []uint
		if err := tx.Model(&models.SurveyResponse{}).Where("survey_id = ?", survey.ID).Pluck("id", &responses).Error; err != nil {
			return err
		}

		questions := tx.Model(&models.Question{}).Select("id").
			Where("kind = ? AND parent_id = ?", models.QuestionKindSurvey, survey.ID)
		if len(scenarios) > 0 {
			questions = questions.Or("kind IN ? AND parent_id IN ?",
				[]string{models.QuestionKindScenario, models.QuestionKindPlanningUnit}, scenarios)
		}
		var questionIDs []uint
		if err := questions.Pluck("id", &questionIDs).Error; err != nil {
			return err
		}

		if len(responses) > 0 {
			if err := tx.Where("response_id IN ?", responses).Delete(&models.Answer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("response_id IN ?", responses).Delete(&models.CoinAssignment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", responses).Delete(&models.SurveyResponse{}).Error; err != nil {
				return err
			}
		}
		if len(questionIDs) > 0 {
			if err := tx.Where("question_id IN ?", questionIDs).Delete(&models.QuestionOption{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", questionIDs).Delete(&models.Question{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("survey_id = ?", survey.ID).Delete(&models.Scenario{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Survey{}, survey.ID).Error
	})
	if err != nil {
		return fmt.Errorf("unable to delete survey: %v", err)
	}

	InvalidateSurveyListing()
	return nil
}
