package services

import (
	"errors"
	"fmt"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignCoins upserts the allocation of one planning unit. Bounds other than
// non-negativity belong to the caller.
func AssignCoins(tx *gorm.DB, response, scenario, unit uint, coins int) (models.CoinAssignment, error) {
	assignment := models.CoinAssignment{
		ResponseID:     response,
		ScenarioID:     scenario,
		PlanningUnitID: unit,
		CoinsAssigned:  coins,
	}
	if coins < 0 {
		return assignment, fmt.Errorf("%w: coins must not be negative", ErrValidation)
	}

	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "response_id"}, {Name: "scenario_id"}, {Name: "planning_unit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"coins_assigned", "updated_at"}),
	}).Create(&assignment).Error; err != nil {
		return assignment, fmt.Errorf("unable to assign coins: %v", err)
	}

	return assignment, nil
}

func GetCoinAssignment(tx *gorm.DB, response, scenario, unit uint) (*models.CoinAssignment, error) {
	var assignment models.CoinAssignment
	if err := tx.Where(
		"response_id = ? AND scenario_id = ? AND planning_unit_id = ?",
		response, scenario, unit,
	).Take(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to get coin assignment: %v", err)
	}
	return &assignment, nil
}

func ListCoinAssignments(tx *gorm.DB, response, scenario uint) ([]models.CoinAssignment, error) {
	var assignments []models.CoinAssignment
	if err := tx.Where("response_id = ? AND scenario_id = ?", response, scenario).
		Order("planning_unit_id ASC").
		Find(&assignments).Error; err != nil {
		return assignments, fmt.Errorf("unable to list coin assignments: %v", err)
	}
	return assignments, nil
}

func RemoveCoinAssignment(tx *gorm.DB, response, scenario, unit uint) error {
	return tx.Where(
		"response_id = ? AND scenario_id = ? AND planning_unit_id = ?",
		response, scenario, unit,
	).Delete(&models.CoinAssignment{}).Error
}

func SumAssigned(tx *gorm.DB, response, scenario uint) (int, error) {
	var sum int64
	if err := tx.Model(&models.CoinAssignment{}).
		Where("response_id = ? AND scenario_id = ?", response, scenario).
		Select("COALESCE(SUM(coins_assigned), 0)").
		Scan(&sum).Error; err != nil {
		return 0, fmt.Errorf("unable to sum coin assignments: %v", err)
	}
	return int(sum), nil
}

// SelectedUnitIDs lists units picked in a scenario, either by holding coins
// or by having an answer to one of the scenario's planning unit questions.
func SelectedUnitIDs(tx *gorm.DB, response, scenario uint) ([]uint, error) {
	var coined []uint
	if err := tx.Model(&models.CoinAssignment{}).
		Where("response_id = ? AND scenario_id = ?", response, scenario).
		Distinct().
		Pluck("planning_unit_id", &coined).Error; err != nil {
		return nil, fmt.Errorf("unable to list coined units: %v", err)
	}

	var answered []uint
	if err := tx.Model(&models.Answer{}).
		Where("response_id = ? AND kind = ? AND planning_unit_id <> 0", response, models.QuestionKindPlanningUnit).
		Where("question_id IN (?)", tx.Model(&models.Question{}).
			Select("id").
			Where("kind = ? AND parent_id = ?", models.QuestionKindPlanningUnit, scenario)).
		Distinct().
		Pluck("planning_unit_id", &answered).Error; err != nil {
		return nil, fmt.Errorf("unable to list answered units: %v", err)
	}

	return lo.Union(coined, answered), nil
}

func SelectedUnitCount(tx *gorm.DB, response, scenario uint) (int, error) {
	units, err := SelectedUnitIDs(tx, response, scenario)
	if err != nil {
		return 0, err
	}
	return len(units), nil
}
