package services

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type SurveyAudit struct {
	SurveyID  uint `json:"survey_id"`
	Responses int  `json:"responses"`
	Completed int  `json:"completed"`
}

// AuditSurvey counts the responses of a survey and how many are complete.
func AuditSurvey(tx *gorm.DB, survey models.Survey) (SurveyAudit, error) {
	audit := SurveyAudit{SurveyID: survey.ID}

	var responses []models.SurveyResponse
	if err := tx.Where("survey_id = ?", survey.ID).Find(&responses).Error; err != nil {
		return audit, err
	}
	audit.Responses = len(responses)
	for _, response := range responses {
		response.Survey = survey
		completed, err := IsResponseCompleted(tx, response)
		if err != nil {
			return audit, err
		}
		if completed {
			audit.Completed++
		}
	}

	return audit, nil
}

func DoProgressAudit() {
	log.Debug().Msg("Now auditing survey progress...")

	start := time.Now()
	var surveys []models.Survey
	if err := database.C.Find(&surveys).Error; err != nil {
		log.Error().Err(err).Msg("An error occurred when listing surveys for audit...")
		return
	}

	var audited int
	for _, survey := range surveys {
		if !survey.IsActiveAt(start) {
			continue
		}
		audit, err := AuditSurvey(database.C, survey)
		if err != nil {
			log.Error().Err(err).Uint("survey", survey.ID).Msg("An error occurred when auditing survey...")
			continue
		}
		audited++
		log.Info().
			Uint("survey", audit.SurveyID).
			Int("responses", audit.Responses).
			Int("completed", audit.Completed).
			Msg("Survey progress audited.")
	}

	log.Debug().Int("count", audited).Dur("elapsed", time.Since(start)).Msg("Survey progress audit finished.")
}

type ChoiceMetric struct {
	QuestionID          uint             `json:"question_id"`
	TotalAnswer         int64            `json:"total_answer"`
	ByOptions           map[uint]int64   `json:"by_options"`
	ByOptionsPercentage map[uint]float64 `json:"by_options_percentage"`
}

// GetChoiceMetric tallies how often each option of a choice question was
// picked, across all responses and planning units.
func GetChoiceMetric(tx *gorm.DB, question models.Question) (ChoiceMetric, error) {
	metric := ChoiceMetric{
		QuestionID:          question.ID,
		ByOptions:           make(map[uint]int64),
		ByOptionsPercentage: make(map[uint]float64),
	}
	if !question.IsChoice() {
		return metric, fmt.Errorf("%w: question %d is not a choice question", ErrValidation, question.ID)
	}

	var answers []models.Answer
	if err := tx.Where("question_id = ?", question.ID).Find(&answers).Error; err != nil {
		return metric, fmt.Errorf("unable to list answers: %v", err)
	}

	for _, answer := range answers {
		if len(answer.SelectedOptions) == 0 {
			continue
		}
		metric.TotalAnswer++
		for _, option := range answer.SelectedOptions {
			metric.ByOptions[option.OptionID]++
		}
	}
	if metric.TotalAnswer > 0 {
		for option, count := range metric.ByOptions {
			metric.ByOptionsPercentage[option] = float64(count) / float64(metric.TotalAnswer)
		}
	}

	return metric, nil
}
