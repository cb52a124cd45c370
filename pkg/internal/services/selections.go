package services

import (
	"fmt"
	"sort"
	"time"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// ParseAnswerInputs turns raw JSON values keyed by question id into typed
// values, rejecting questions that do not belong to the parent.
func ParseAnswerInputs(tx *gorm.DB, kind models.QuestionKind, parent uint, raw map[uint]jsoniter.RawMessage) (map[uint]AnswerValue, error) {
	questions, err := questionIndex(tx, kind, parent)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]AnswerValue, len(raw))
	for id, value := range raw {
		question, ok := questions[id]
		if !ok {
			return nil, fmt.Errorf("%w: question %d", ErrNotFound, id)
		}
		if out[id], err = ParseAnswerValue(question, value); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func questionIndex(tx *gorm.DB, kind models.QuestionKind, parent uint) (map[uint]models.Question, error) {
	questions, err := QuestionsFor(tx, kind, parent)
	if err != nil {
		return nil, err
	}
	return lo.KeyBy(questions, func(item models.Question) uint {
		return item.ID
	}), nil
}

func sortedQuestionIDs(answers map[uint]AnswerValue) []uint {
	ids := lo.Keys(answers)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// saveAnswers writes all values in one transaction, one row per unit for
// planning unit questions.
func saveAnswers(tx *gorm.DB, response models.SurveyResponse, kind models.QuestionKind, parent uint, units []uint, answers map[uint]AnswerValue) error {
	questions, err := questionIndex(tx, kind, parent)
	if err != nil {
		return err
	}
	if len(units) == 0 {
		units = []uint{0}
	}
	for _, id := range sortedQuestionIDs(answers) {
		question, ok := questions[id]
		if !ok {
			return fmt.Errorf("%w: question %d", ErrNotFound, id)
		}
		for _, unit := range units {
			key := AnswerKey{ResponseID: response.ID, PlanningUnitID: unit}
			if _, err := UpsertAnswer(tx, question, key, answers[id]); err != nil {
				return err
			}
		}
	}
	return TouchResponse(tx, response)
}

func SaveSurveyAnswers(tx *gorm.DB, response models.SurveyResponse, answers map[uint]AnswerValue, now time.Time) error {
	if err := EnsureSurveyActive(response.Survey, now); err != nil {
		return err
	}
	return tx.Transaction(func(tx *gorm.DB) error {
		return saveAnswers(tx, response, models.QuestionKindSurvey, response.SurveyID, nil, answers)
	})
}

func SaveScenarioAnswers(tx *gorm.DB, response models.SurveyResponse, scenario models.Scenario, answers map[uint]AnswerValue, now time.Time) error {
	if err := EnsureSurveyActive(response.Survey, now); err != nil {
		return err
	}
	return tx.Transaction(func(tx *gorm.DB) error {
		return saveAnswers(tx, response, models.QuestionKindScenario, scenario.ID, nil, answers)
	})
}

type UnitSelection struct {
	Units []uint
	// Coins given to every selected unit, nil leaves allocations untouched.
	Coins   *int
	Answers map[uint]AnswerValue
}

// SaveUnitSelection applies the same answers and coins to every selected
// unit. Either all rows are written or none.
func SaveUnitSelection(tx *gorm.DB, response models.SurveyResponse, scenario models.Scenario, selection UnitSelection, now time.Time) error {
	if err := EnsureSurveyActive(response.Survey, now); err != nil {
		return err
	}
	units := lo.Uniq(selection.Units)
	if len(units) == 0 {
		return fmt.Errorf("%w: at least one planning unit must be selected", ErrValidation)
	} else if !scenario.IsSpatial {
		return fmt.Errorf("%w: scenario %d is not spatial", ErrInvalidState, scenario.ID)
	} else if selection.Coins != nil && !scenario.IsWeighted {
		return fmt.Errorf("%w: scenario %d is not weighted", ErrInvalidState, scenario.ID)
	}
	if err := EnsureUnitsInScenario(tx, scenario, units); err != nil {
		return err
	}

	return tx.Transaction(func(tx *gorm.DB) error {
		if err := saveAnswers(tx, response, models.QuestionKindPlanningUnit, scenario.ID, units, selection.Answers); err != nil {
			return err
		}
		if selection.Coins == nil {
			return nil
		}
		if err := ensureCoinBudget(tx, response, scenario, units, *selection.Coins); err != nil {
			return err
		}
		for _, unit := range units {
			if _, err := AssignCoins(tx, response.ID, scenario.ID, unit, *selection.Coins); err != nil {
				return err
			}
		}
		return nil
	})
}

// ensureCoinBudget allows spending whatever is still available plus what the
// selected units already hold.
func ensureCoinBudget(tx *gorm.DB, response models.SurveyResponse, scenario models.Scenario, units []uint, coins int) error {
	if coins < scenario.MinCoinsPerUnit || coins > scenario.MaxCoinsPerUnit {
		return fmt.Errorf(
			"%w: coins per unit must be between %d and %d",
			ErrValidation, scenario.MinCoinsPerUnit, scenario.MaxCoinsPerUnit,
		)
	}

	assignments, err := ListCoinAssignments(tx, response.ID, scenario.ID)
	if err != nil {
		return err
	}
	var total, held int
	for _, item := range assignments {
		total += item.CoinsAssigned
		if lo.Contains(units, item.PlanningUnitID) {
			held += item.CoinsAssigned
		}
	}
	if next := total - held + coins*len(units); next > scenario.TotalCoins {
		return fmt.Errorf(
			"%w: %d coins requested but only %d available",
			ErrValidation, coins*len(units), scenario.TotalCoins-total+held,
		)
	}
	return nil
}

// ClearUnitSelection drops the answers and coins of one unit.
func ClearUnitSelection(tx *gorm.DB, response models.SurveyResponse, scenario models.Scenario, unit uint, now time.Time) error {
	if err := EnsureSurveyActive(response.Survey, now); err != nil {
		return err
	}
	return tx.Transaction(func(tx *gorm.DB) error {
		questions, err := QuestionsFor(tx, models.QuestionKindPlanningUnit, scenario.ID)
		if err != nil {
			return err
		}
		if err := DeleteUnitAnswers(tx, response.ID, questionIDs(questions), unit); err != nil {
			return fmt.Errorf("unable to delete unit answers: %v", err)
		}
		if err := RemoveCoinAssignment(tx, response.ID, scenario.ID, unit); err != nil {
			return fmt.Errorf("unable to delete coin assignment: %v", err)
		}
		return TouchResponse(tx, response)
	})
}

type UnitSelectionDetail struct {
	PlanningUnitID uint            `json:"planning_unit_id"`
	Coins          *int            `json:"coins"`
	Answers        []models.Answer `json:"answers"`
}

func GetUnitSelection(tx *gorm.DB, response models.SurveyResponse, scenario models.Scenario, unit uint) (UnitSelectionDetail, error) {
	detail := UnitSelectionDetail{PlanningUnitID: unit, Answers: []models.Answer{}}

	if err := EnsureUnitsInScenario(tx, scenario, []uint{unit}); err != nil {
		return detail, err
	}
	questions, err := QuestionsFor(tx, models.QuestionKindPlanningUnit, scenario.ID)
	if err != nil {
		return detail, err
	}
	answers, err := ListAnswers(tx, response.ID, questionIDs(questions))
	if err != nil {
		return detail, err
	}
	detail.Answers = append(detail.Answers, lo.Filter(answers, func(item models.Answer, _ int) bool {
		return item.PlanningUnitID == unit
	})...)

	if assignment, err := GetCoinAssignment(tx, response.ID, scenario.ID, unit); err != nil {
		return detail, err
	} else if assignment != nil {
		detail.Coins = lo.ToPtr(assignment.CoinsAssigned)
	}
	return detail, nil
}
