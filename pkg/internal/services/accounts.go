package services

import (
	"fmt"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// DeleteAccountData removes every response of an account together with its
// answers and coin assignments.
func DeleteAccountData(tx *gorm.DB, account uint) (int64, error) {
	var count int64
	err := tx.Transaction(func(tx *gorm.DB) error {
		responses := tx.Model(&models.SurveyResponse{}).Select("id").Where("account_id = ?", account)
		if err := tx.Where("response_id IN (?)", responses).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("response_id IN (?)", responses).Delete(&models.CoinAssignment{}).Error; err != nil {
			return err
		}
		result := tx.Where("account_id = ?", account).Delete(&models.SurveyResponse{})
		count = result.RowsAffected
		return result.Error
	})
	if err != nil {
		return 0, fmt.Errorf("unable to delete account data: %v", err)
	}

	log.Info().Uint("account", account).Int64("responses", count).Msg("Deleted survey data of account.")
	return count, nil
}
