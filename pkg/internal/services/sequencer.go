package services

import (
	"fmt"
	"sort"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ScenariosOf lists the scenarios of a survey by order, ties broken by id.
func ScenariosOf(tx *gorm.DB, survey uint) ([]models.Scenario, error) {
	var scenarios []models.Scenario
	if err := tx.Where("survey_id = ?", survey).Find(&scenarios).Error; err != nil {
		return nil, fmt.Errorf("unable to list scenarios: %v", err)
	}
	SortScenarios(scenarios)
	return scenarios, nil
}

func SortScenarios(scenarios []models.Scenario) {
	sort.SliceStable(scenarios, func(i, j int) bool {
		if scenarios[i].Order != scenarios[j].Order {
			return scenarios[i].Order < scenarios[j].Order
		}
		return scenarios[i].ID < scenarios[j].ID
	})
}

// NextScenario expects an already sorted sequence and returns nil when the
// scenario is the last one or not part of the sequence.
func NextScenario(scenarios []models.Scenario, current uint) *models.Scenario {
	_, idx, ok := lo.FindIndexOf(scenarios, func(item models.Scenario) bool {
		return item.ID == current
	})
	if !ok || idx+1 >= len(scenarios) {
		return nil
	}
	return &scenarios[idx+1]
}

func NextScenarioAfter(tx *gorm.DB, survey, current uint) (*models.Scenario, error) {
	scenarios, err := ScenariosOf(tx, survey)
	if err != nil {
		return nil, err
	}
	return NextScenario(scenarios, current), nil
}

func FirstScenario(tx *gorm.DB, survey uint) (*models.Scenario, error) {
	scenarios, err := ScenariosOf(tx, survey)
	if err != nil || len(scenarios) == 0 {
		return nil, err
	}
	return &scenarios[0], nil
}

func GetScenario(tx *gorm.DB, survey, id uint) (models.Scenario, error) {
	var scenario models.Scenario
	if err := tx.Where("id = ? AND survey_id = ?", id, survey).First(&scenario).Error; err != nil {
		return scenario, wrapRecordError(err, "scenario %d in survey %d", id, survey)
	}
	return scenario, nil
}
