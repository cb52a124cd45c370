package database

import (
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"gorm.io/gorm"
)

var AutoMaintainRange = []any{
	&models.PlanningUnitFamily{},
	&models.PlanningUnit{},
	&models.Survey{},
	&models.Scenario{},
	&models.Question{},
	&models.QuestionOption{},
	&models.SurveyResponse{},
	&models.Answer{},
	&models.CoinAssignment{},
}

func RunMigration(source *gorm.DB) error {
	if err := source.AutoMigrate(AutoMaintainRange...); err != nil {
		return err
	}

	return nil
}
