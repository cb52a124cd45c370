package models

import "gorm.io/datatypes"

type PlanningUnitFamily struct {
	BaseModel

	Name         string         `json:"name" gorm:"uniqueIndex"`
	Description  string         `json:"description"`
	RemoteRaster *string        `json:"remote_raster"`
	Units        []PlanningUnit `json:"units,omitempty" gorm:"many2many:planning_unit_family_members"`
}

type PlanningUnit struct {
	BaseModel

	// GeoJSON, never interpreted by this service.
	Geometry datatypes.JSON       `json:"geometry"`
	Families []PlanningUnitFamily `json:"families,omitempty" gorm:"many2many:planning_unit_family_members"`
}

type CoinAssignment struct {
	BaseModel

	ResponseID     uint `json:"response_id" gorm:"uniqueIndex:idx_coin_assignment_key"`
	ScenarioID     uint `json:"scenario_id" gorm:"uniqueIndex:idx_coin_assignment_key"`
	PlanningUnitID uint `json:"planning_unit_id" gorm:"uniqueIndex:idx_coin_assignment_key"`
	CoinsAssigned  int  `json:"coins_assigned"`
}
