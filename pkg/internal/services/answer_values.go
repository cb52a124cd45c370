package services

import (
	"fmt"
	"strconv"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

// AnswerValue is the closed set of values an answer can hold. Each variant
// writes its own slots, so there is no type it silently ignores.
type AnswerValue interface {
	QuestionType() models.QuestionType
	apply(answer *models.Answer, options []models.QuestionOption) error
}

type (
	TextValue           string
	NumberValue         float64
	SingleChoiceValue   uint
	MultipleChoiceValue []uint
)

func (v TextValue) QuestionType() models.QuestionType { return models.QuestionTypeText }

func (v TextValue) apply(answer *models.Answer, _ []models.QuestionOption) error {
	answer.TextAnswer = lo.ToPtr(string(v))
	return nil
}

func (v NumberValue) QuestionType() models.QuestionType { return models.QuestionTypeNumber }

func (v NumberValue) apply(answer *models.Answer, _ []models.QuestionOption) error {
	answer.NumericAnswer = lo.ToPtr(float64(v))
	answer.TextAnswer = lo.ToPtr(strconv.FormatFloat(float64(v), 'f', -1, 64))
	return nil
}

func (v SingleChoiceValue) QuestionType() models.QuestionType {
	return models.QuestionTypeSingleChoice
}

func (v SingleChoiceValue) apply(answer *models.Answer, options []models.QuestionOption) error {
	option, ok := lo.Find(options, func(item models.QuestionOption) bool {
		return item.ID == uint(v)
	})
	if !ok {
		return fmt.Errorf("%w: option %d does not belong to question %d", ErrValidation, v, answer.QuestionID)
	}
	answer.SelectedOptions = []models.SelectedOption{{OptionID: option.ID, Text: option.Text}}
	answer.TextAnswer = lo.ToPtr(option.Text)
	return nil
}

func (v MultipleChoiceValue) QuestionType() models.QuestionType {
	return models.QuestionTypeMultipleChoice
}

func (v MultipleChoiceValue) apply(answer *models.Answer, options []models.QuestionOption) error {
	byID := lo.SliceToMap(options, func(item models.QuestionOption) (uint, models.QuestionOption) {
		return item.ID, item
	})
	selected := make([]models.SelectedOption, 0, len(v))
	for _, id := range lo.Uniq(v) {
		option, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: option %d does not belong to question %d", ErrValidation, id, answer.QuestionID)
		}
		selected = append(selected, models.SelectedOption{OptionID: option.ID, Text: option.Text})
	}
	answer.SelectedOptions = selected
	return nil
}

// ParseAnswerValue decodes a raw JSON value into the variant the question
// expects. Choice ids may be sent as numbers or numeric strings.
func ParseAnswerValue(question models.Question, raw []byte) (AnswerValue, error) {
	switch question.Type {
	case models.QuestionTypeText:
		var text string
		if err := jsoniter.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("%w: question %d expects text", ErrValidation, question.ID)
		}
		return TextValue(text), nil
	case models.QuestionTypeNumber:
		var number float64
		if err := jsoniter.Unmarshal(raw, &number); err != nil {
			return nil, fmt.Errorf("%w: question %d expects a number", ErrValidation, question.ID)
		}
		return NumberValue(number), nil
	case models.QuestionTypeSingleChoice:
		var id any
		if err := jsoniter.Unmarshal(raw, &id); err != nil {
			return nil, fmt.Errorf("%w: question %d expects an option id", ErrValidation, question.ID)
		}
		parsed, err := parseOptionID(id)
		if err != nil {
			return nil, fmt.Errorf("%w: question %d: %v", ErrValidation, question.ID, err)
		}
		return SingleChoiceValue(parsed), nil
	case models.QuestionTypeMultipleChoice:
		var ids []any
		if err := jsoniter.Unmarshal(raw, &ids); err != nil {
			return nil, fmt.Errorf("%w: question %d expects a list of option ids", ErrValidation, question.ID)
		}
		out := make(MultipleChoiceValue, 0, len(ids))
		for _, id := range ids {
			parsed, err := parseOptionID(id)
			if err != nil {
				return nil, fmt.Errorf("%w: question %d: %v", ErrValidation, question.ID, err)
			}
			out = append(out, parsed)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: question %d has unknown type %q", ErrValidation, question.ID, question.Type)
	}
}

func parseOptionID(in any) (uint, error) {
	switch val := in.(type) {
	case float64:
		if val < 0 || val != float64(uint(val)) {
			return 0, fmt.Errorf("invalid option id %v", val)
		}
		return uint(val), nil
	case string:
		parsed, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid option id %q", val)
		}
		return uint(parsed), nil
	default:
		return 0, fmt.Errorf("invalid option id %v", in)
	}
}
