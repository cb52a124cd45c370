package models

import (
	"time"

	"gorm.io/datatypes"
)

type Survey struct {
	BaseModel

	Title                  string                    `json:"title"`
	Description            string                    `json:"description"`
	StartAt                *time.Time                `json:"start_at"`
	EndAt                  *time.Time                `json:"end_at"`
	AllowMultipleResponses bool                      `json:"allow_multiple_responses"`
	Groups                 datatypes.JSONSlice[uint] `json:"groups"`

	Scenarios []Scenario `json:"scenarios,omitempty"`
}

// IsActiveAt reports whether the time falls inside [StartAt, EndAt).
// A missing bound leaves that side of the window open.
func (v Survey) IsActiveAt(date time.Time) bool {
	if v.StartAt != nil && date.Before(*v.StartAt) {
		return false
	}
	if v.EndAt != nil && !date.Before(*v.EndAt) {
		return false
	}
	return true
}

const (
	SnappingDefault    = "default"
	SnappingIntersects = "intersects"
	SnappingIsWithin   = "is_within"
)

type Scenario struct {
	BaseModel

	SurveyID    uint   `json:"survey_id" gorm:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Order       int    `json:"order" gorm:"column:sort_order"`

	FamilyID          *uint               `json:"family_id"`
	Family            *PlanningUnitFamily `json:"family,omitempty"`
	SelectionSnapping string              `json:"selection_snapping" gorm:"default:default"`

	IsSpatial           bool `json:"is_spatial"`
	IsWeighted          bool `json:"is_weighted"`
	TotalCoins          int  `json:"total_coins"`
	MinCoinsPerUnit     int  `json:"min_coins_per_pu"`
	MaxCoinsPerUnit     int  `json:"max_coins_per_pu"`
	RequireAllCoinsUsed bool `json:"require_all_coins_used"`
}

type SurveyResponse struct {
	BaseModel

	SurveyID  uint   `json:"survey_id" gorm:"index"`
	Survey    Survey `json:"survey,omitempty"`
	AccountID uint   `json:"account_id" gorm:"index"`
}
