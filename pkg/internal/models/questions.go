package models

import "gorm.io/datatypes"

type QuestionKind = string

const (
	QuestionKindSurvey       = QuestionKind("survey")
	QuestionKindScenario     = QuestionKind("scenario")
	QuestionKindPlanningUnit = QuestionKind("planning_unit")
)

type QuestionType = string

const (
	QuestionTypeText           = QuestionType("text")
	QuestionTypeNumber         = QuestionType("number")
	QuestionTypeSingleChoice   = QuestionType("single_choice")
	QuestionTypeMultipleChoice = QuestionType("multiple_choice")
)

type Question struct {
	BaseModel

	// ParentID points to a survey for survey questions and to a scenario
	// for scenario and planning unit questions.
	Kind     QuestionKind `json:"kind" gorm:"index:idx_question_parent"`
	ParentID uint         `json:"parent_id" gorm:"index:idx_question_parent"`

	Text       string           `json:"text"`
	Order      int              `json:"order" gorm:"column:sort_order"`
	Type       QuestionType     `json:"type"`
	IsRequired bool             `json:"is_required"`
	HelpText   *string          `json:"help_text"`
	Options    []QuestionOption `json:"options,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}

func (v Question) IsChoice() bool {
	return v.Type == QuestionTypeSingleChoice || v.Type == QuestionTypeMultipleChoice
}

type QuestionOption struct {
	BaseModel

	QuestionID uint   `json:"question_id" gorm:"index"`
	Text       string `json:"text"`
	Order      int    `json:"order" gorm:"column:sort_order"`
}

type SelectedOption struct {
	OptionID uint   `json:"option_id"`
	Text     string `json:"text"`
}

type Answer struct {
	BaseModel

	Kind       QuestionKind `json:"kind"`
	ResponseID uint         `json:"response_id" gorm:"uniqueIndex:idx_answer_key"`
	QuestionID uint         `json:"question_id" gorm:"uniqueIndex:idx_answer_key"`
	// Zero unless the answer belongs to a planning unit question.
	PlanningUnitID uint `json:"planning_unit_id" gorm:"uniqueIndex:idx_answer_key"`

	TextAnswer      *string                             `json:"text_answer"`
	NumericAnswer   *float64                            `json:"numeric_answer"`
	SelectedOptions datatypes.JSONSlice[SelectedOption] `json:"selected_options"`
}

// HasValue reports whether any value slot carries data.
func (v Answer) HasValue() bool {
	if v.TextAnswer != nil && len(*v.TextAnswer) > 0 {
		return true
	}
	if v.NumericAnswer != nil {
		return true
	}
	return len(v.SelectedOptions) > 0
}
