package services

import (
	"fmt"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const familyMembersTable = "planning_unit_family_members"

func familyMembers(tx *gorm.DB) *gorm.DB {
	return tx.Table(tx.NamingStrategy.JoinTableName(familyMembersTable))
}

func FamilyUnitIDs(tx *gorm.DB, family uint) ([]uint, error) {
	var ids []uint
	if err := familyMembers(tx).
		Where("planning_unit_family_id = ?", family).
		Order("planning_unit_id ASC").
		Pluck("planning_unit_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("unable to list family members: %v", err)
	}
	return ids, nil
}

// ScenarioUnitIDs returns no units for scenarios without a family.
func ScenarioUnitIDs(tx *gorm.DB, scenario models.Scenario) ([]uint, error) {
	if scenario.FamilyID == nil {
		return nil, nil
	}
	return FamilyUnitIDs(tx, *scenario.FamilyID)
}

// EnsureUnitsInScenario rejects units outside of the scenario's family.
func EnsureUnitsInScenario(tx *gorm.DB, scenario models.Scenario, units []uint) error {
	members, err := ScenarioUnitIDs(tx, scenario)
	if err != nil {
		return err
	}
	if missing, _ := lo.Difference(lo.Uniq(units), members); len(missing) > 0 {
		return fmt.Errorf("%w: planning units %v are not part of scenario %d", ErrNotFound, missing, scenario.ID)
	}
	return nil
}

func GetFamily(tx *gorm.DB, id uint) (models.PlanningUnitFamily, error) {
	var family models.PlanningUnitFamily
	if err := tx.Where("id = ?", id).First(&family).Error; err != nil {
		return family, wrapRecordError(err, "planning unit family %d", id)
	}
	return family, nil
}

// NewFamily creates a family together with one unit per geometry.
func NewFamily(tx *gorm.DB, name, description string, remoteRaster *string, geometries []datatypes.JSON) (models.PlanningUnitFamily, error) {
	family := models.PlanningUnitFamily{
		Name:         name,
		Description:  description,
		RemoteRaster: remoteRaster,
		Units: lo.Map(geometries, func(item datatypes.JSON, _ int) models.PlanningUnit {
			return models.PlanningUnit{Geometry: item}
		}),
	}

	var count int64
	if err := tx.Model(&models.PlanningUnitFamily{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return family, fmt.Errorf("unable to count existing families: %v", err)
	} else if count > 0 {
		return family, fmt.Errorf("%w: family %q already exists", ErrValidation, name)
	}

	if err := tx.Create(&family).Error; err != nil {
		return family, fmt.Errorf("unable to create family: %v", err)
	}
	return family, nil
}

// AddUnitsToFamily links existing units into another family.
func AddUnitsToFamily(tx *gorm.DB, family models.PlanningUnitFamily, units []uint) error {
	if len(units) == 0 {
		return nil
	}
	var items []models.PlanningUnit
	if err := tx.Where("id IN ?", units).Find(&items).Error; err != nil {
		return fmt.Errorf("unable to load planning units: %v", err)
	} else if len(items) != len(lo.Uniq(units)) {
		return fmt.Errorf("%w: some planning units do not exist", ErrNotFound)
	}
	return tx.Model(&family).Association("Units").Append(&items)
}
