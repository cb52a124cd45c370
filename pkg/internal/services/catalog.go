package services

import (
	"fmt"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func PreloadOptions(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Options", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	})
}

// QuestionsFor reads the questions of a parent straight from storage, so
// edits made to a live survey are visible on the very next call.
func QuestionsFor(tx *gorm.DB, kind models.QuestionKind, parent uint) ([]models.Question, error) {
	var questions []models.Question
	if err := PreloadOptions(tx).
		Where("kind = ? AND parent_id = ?", kind, parent).
		Order("sort_order ASC, id ASC").
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("unable to list questions: %v", err)
	}
	return questions, nil
}

func RequiredQuestionsFor(tx *gorm.DB, kind models.QuestionKind, parent uint) ([]models.Question, error) {
	questions, err := QuestionsFor(tx, kind, parent)
	if err != nil {
		return nil, err
	}
	return lo.Filter(questions, func(item models.Question, _ int) bool {
		return item.IsRequired
	}), nil
}

// ChoicesFor returns nil for text and number questions.
func ChoicesFor(tx *gorm.DB, question models.Question) ([]models.QuestionOption, error) {
	if !question.IsChoice() {
		return nil, nil
	}

	var options []models.QuestionOption
	if err := tx.Where("question_id = ?", question.ID).
		Order("sort_order ASC, id ASC").
		Find(&options).Error; err != nil {
		return nil, fmt.Errorf("unable to list options: %v", err)
	}
	return options, nil
}

func GetQuestion(tx *gorm.DB, kind models.QuestionKind, parent, id uint) (models.Question, error) {
	var question models.Question
	if err := PreloadOptions(tx).
		Where("id = ? AND kind = ? AND parent_id = ?", id, kind, parent).
		First(&question).Error; err != nil {
		return question, wrapRecordError(err, "question %d", id)
	}
	return question, nil
}

func GetQuestionByID(tx *gorm.DB, id uint) (models.Question, error) {
	var question models.Question
	if err := PreloadOptions(tx).Where("id = ?", id).First(&question).Error; err != nil {
		return question, wrapRecordError(err, "question %d", id)
	}
	return question, nil
}
