package services

import (
	"fmt"
	"time"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

func GetSurvey(tx *gorm.DB, id uint) (models.Survey, error) {
	var survey models.Survey
	if err := tx.Where("id = ?", id).First(&survey).Error; err != nil {
		return survey, wrapRecordError(err, "survey %d", id)
	}
	return survey, nil
}

// EnsureSurveyAccess passes when the survey is open to everyone or shares a
// group with the caller.
func EnsureSurveyAccess(survey models.Survey, groups []uint) error {
	if len(survey.Groups) == 0 {
		return nil
	}
	if len(lo.Intersect([]uint(survey.Groups), groups)) == 0 {
		return fmt.Errorf("%w: not a member of any group of survey %d", ErrPermissionDenied, survey.ID)
	}
	return nil
}

func EnsureSurveyActive(survey models.Survey, date time.Time) error {
	if !survey.IsActiveAt(date) {
		if survey.StartAt != nil && date.Before(*survey.StartAt) {
			return fmt.Errorf("%w: survey %d has not started yet", ErrSurveyInactive, survey.ID)
		}
		return fmt.Errorf("%w: survey %d has ended", ErrSurveyInactive, survey.ID)
	}
	return nil
}

// GetResponse only finds responses owned by the account.
func GetResponse(tx *gorm.DB, id, account uint) (models.SurveyResponse, error) {
	var response models.SurveyResponse
	if err := tx.Preload("Survey").
		Where("id = ? AND account_id = ?", id, account).
		First(&response).Error; err != nil {
		return response, wrapRecordError(err, "survey response %d", id)
	}
	return response, nil
}

func ListResponses(tx *gorm.DB, survey, account uint) ([]models.SurveyResponse, error) {
	var responses []models.SurveyResponse
	if err := tx.Where("survey_id = ? AND account_id = ?", survey, account).
		Order("id ASC").
		Find(&responses).Error; err != nil {
		return responses, fmt.Errorf("unable to list survey responses: %v", err)
	}
	return responses, nil
}

// StartResponse picks the response an account continues with, creating one
// when there is nothing to resume. Surveys allowing multiple responses start
// a fresh response unless a response id is given.
func StartResponse(tx *gorm.DB, survey models.Survey, account uint, id *uint, now time.Time) (models.SurveyResponse, error) {
	var response models.SurveyResponse
	if err := EnsureSurveyActive(survey, now); err != nil {
		return response, err
	}

	var current *models.SurveyResponse
	if id != nil {
		item, err := GetResponse(tx, *id, account)
		if err != nil {
			return response, err
		} else if item.SurveyID != survey.ID {
			return response, fmt.Errorf("%w: response %d does not belong to survey %d", ErrNotFound, item.ID, survey.ID)
		}
		current = &item
	}

	err := tx.Transaction(func(tx *gorm.DB) error {
		if !survey.AllowMultipleResponses {
			existing, err := ListResponses(tx, survey.ID, account)
			if err != nil {
				return err
			}
			switch {
			case len(existing) > 1:
				return fmt.Errorf("%w: %d responses stored for survey %d", ErrResponseConflict, len(existing), survey.ID)
			case len(existing) == 1 && current != nil && current.ID != existing[0].ID:
				return fmt.Errorf("%w: account already answers survey %d", ErrResponseConflict, survey.ID)
			case len(existing) == 1:
				current = &existing[0]
			}
		}

		if current != nil {
			response = *current
			return nil
		}

		response = models.SurveyResponse{SurveyID: survey.ID, AccountID: account}
		if err := tx.Create(&response).Error; err != nil {
			return fmt.Errorf("unable to create survey response: %v", err)
		}
		return nil
	})
	if err != nil {
		return response, err
	}

	response.Survey = survey
	return response, nil
}

func TouchResponse(tx *gorm.DB, response models.SurveyResponse) error {
	return tx.Model(&models.SurveyResponse{}).
		Where("id = ?", response.ID).
		Update("updated_at", time.Now()).Error
}
