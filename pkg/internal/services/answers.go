package services

import (
	"errors"
	"fmt"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerKey struct {
	ResponseID     uint
	QuestionID     uint
	PlanningUnitID uint
}

func (v AnswerKey) scope(tx *gorm.DB) *gorm.DB {
	return tx.Where(
		"response_id = ? AND question_id = ? AND planning_unit_id = ?",
		v.ResponseID, v.QuestionID, v.PlanningUnitID,
	)
}

type AnswerPresence int

const (
	// PresenceValue only counts answers that hold a non-empty value.
	PresenceValue AnswerPresence = iota
	// PresenceRow counts any stored answer row, even an empty one.
	PresenceRow
)

var AnswerPresencePolicy = PresenceValue

func isAnswerPresent(answer models.Answer) bool {
	return AnswerPresencePolicy == PresenceRow || answer.HasValue()
}

// GetAnswer returns nil when no answer is stored under the key. Should
// duplicates exist the most recently updated one wins.
func GetAnswer(tx *gorm.DB, key AnswerKey) (*models.Answer, error) {
	var answer models.Answer
	if err := key.scope(tx).Order("updated_at DESC, id DESC").Take(&answer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to get answer: %v", err)
	}
	return &answer, nil
}

func HasAnswer(tx *gorm.DB, key AnswerKey) (bool, error) {
	var answers []models.Answer
	if err := key.scope(tx).Find(&answers).Error; err != nil {
		return false, fmt.Errorf("unable to check answer: %v", err)
	}
	return lo.SomeBy(answers, isAnswerPresent), nil
}

// AnsweredKeys collects every answered key of a response among the given
// questions, across all planning units.
func AnsweredKeys(tx *gorm.DB, response uint, questions []uint) (map[AnswerKey]bool, error) {
	out := make(map[AnswerKey]bool)
	if len(questions) == 0 {
		return out, nil
	}

	answers, err := ListAnswers(tx, response, questions)
	if err != nil {
		return out, err
	}
	for _, answer := range answers {
		if isAnswerPresent(answer) {
			out[AnswerKey{
				ResponseID:     answer.ResponseID,
				QuestionID:     answer.QuestionID,
				PlanningUnitID: answer.PlanningUnitID,
			}] = true
		}
	}
	return out, nil
}

func ListAnswers(tx *gorm.DB, response uint, questions []uint) ([]models.Answer, error) {
	var answers []models.Answer
	if len(questions) == 0 {
		return answers, nil
	}
	if err := tx.Where("response_id = ? AND question_id IN ?", response, questions).
		Order("planning_unit_id ASC, question_id ASC").
		Find(&answers).Error; err != nil {
		return answers, fmt.Errorf("unable to list answers: %v", err)
	}
	return answers, nil
}

// UpsertAnswer writes the value under the key, replacing whatever was stored.
// Values that do not fit the question are rejected and nothing is written.
func UpsertAnswer(tx *gorm.DB, question models.Question, key AnswerKey, value AnswerValue) (models.Answer, error) {
	key.QuestionID = question.ID

	answer := models.Answer{
		Kind:           question.Kind,
		ResponseID:     key.ResponseID,
		QuestionID:     key.QuestionID,
		PlanningUnitID: key.PlanningUnitID,
	}

	if value == nil {
		return answer, fmt.Errorf("%w: question %d got an empty value", ErrValidation, question.ID)
	}
	if isUnitQuestion := question.Kind == models.QuestionKindPlanningUnit; isUnitQuestion != (key.PlanningUnitID != 0) {
		return answer, fmt.Errorf("%w: planning unit mismatch for question %d", ErrValidation, question.ID)
	}
	if value.QuestionType() != question.Type {
		return answer, fmt.Errorf(
			"%w: question %d expects %s, got %s",
			ErrValidation, question.ID, question.Type, value.QuestionType(),
		)
	}

	options := question.Options
	if question.IsChoice() && options == nil {
		var err error
		if options, err = ChoicesFor(tx, question); err != nil {
			return answer, err
		}
	}
	if err := value.apply(&answer, options); err != nil {
		return answer, err
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "response_id"}, {Name: "question_id"}, {Name: "planning_unit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "text_answer", "numeric_answer", "selected_options", "updated_at",
		}),
	}).Create(&answer).Error; err != nil {
		return answer, fmt.Errorf("unable to save answer: %v", err)
	}

	if stored, err := GetAnswer(tx, key); err != nil {
		return answer, err
	} else if stored != nil {
		answer = *stored
	}
	return answer, nil
}

func DeleteUnitAnswers(tx *gorm.DB, response uint, questions []uint, unit uint) error {
	if len(questions) == 0 {
		return nil
	}
	return tx.Where("response_id = ? AND question_id IN ? AND planning_unit_id = ?", response, questions, unit).
		Delete(&models.Answer{}).Error
}
