package services

import (
	"testing"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAnswerRoundTrip(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	response := newResponse(t, db, survey, 1)
	question := createQuestion(t, db, models.QuestionKindSurvey, survey.ID, models.QuestionTypeText, true)
	key := AnswerKey{ResponseID: response.ID, QuestionID: question.ID}

	stored, err := GetAnswer(db, key)
	require.NoError(t, err)
	assert.Nil(t, stored)

	_, err = UpsertAnswer(db, question, key, TextValue("first"))
	require.NoError(t, err)
	answer, err := UpsertAnswer(db, question, key, TextValue("second"))
	require.NoError(t, err)
	require.NotNil(t, answer.TextAnswer)
	assert.Equal(t, "second", *answer.TextAnswer)

	stored, err = GetAnswer(db, key)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "second", *stored.TextAnswer)

	has, err := HasAnswer(db, key)
	require.NoError(t, err)
	assert.True(t, has)

	var count int64
	require.NoError(t, db.Model(&models.Answer{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertAnswerNumberKeepsTextCopy(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	response := newResponse(t, db, survey, 1)
	question := createQuestion(t, db, models.QuestionKindSurvey, survey.ID, models.QuestionTypeNumber, false)

	answer, err := UpsertAnswer(db, question, AnswerKey{ResponseID: response.ID}, NumberValue(42))
	require.NoError(t, err)
	require.NotNil(t, answer.NumericAnswer)
	assert.Equal(t, 42.0, *answer.NumericAnswer)
	assert.Equal(t, "42", *answer.TextAnswer)
}

func TestUpsertAnswerRejectsOptionOfAnotherQuestion(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	response := newResponse(t, db, survey, 1)
	target := createQuestion(t, db, models.QuestionKindSurvey, survey.ID, models.QuestionTypeSingleChoice, true, "Yes", "No")
	other := createQuestion(t, db, models.QuestionKindSurvey, survey.ID, models.QuestionTypeSingleChoice, true, "Red", "Blue")
	key := AnswerKey{ResponseID: response.ID, QuestionID: target.ID}

	_, err := UpsertAnswer(db, target, key, SingleChoiceValue(other.Options[0].ID))
	assert.ErrorIs(t, err, ErrValidation)

	has, err := HasAnswer(db, key)
	require.NoError(t, err)
	assert.False(t, has)

	answer, err := UpsertAnswer(db, target, key, SingleChoiceValue(target.Options[1].ID))
	require.NoError(t, err)
	require.Len(t, answer.SelectedOptions, 1)
	assert.Equal(t, target.Options[1].ID, answer.SelectedOptions[0].OptionID)
	assert.Equal(t, "No", *answer.TextAnswer)
}

func TestUpsertAnswerMultipleChoice(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	response := newResponse(t, db, survey, 1)
	question := createQuestion(t, db, models.QuestionKindSurvey, survey.ID, models.QuestionTypeMultipleChoice, false, "Fishing", "Diving", "Shipping")
	key := AnswerKey{ResponseID: response.ID}

	answer, err := UpsertAnswer(db, question, key, MultipleChoiceValue{question.Options[2].ID, question.Options[0].ID, question.Options[2].ID})
	require.NoError(t, err)
	require.Len(t, answer.SelectedOptions, 2)
	assert.Equal(t, "Shipping", answer.SelectedOptions[0].Text)
	assert.Equal(t, "Fishing", answer.SelectedOptions[1].Text)

	_, err = UpsertAnswer(db, question, key, MultipleChoiceValue{question.Options[0].ID, 9999})
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := GetAnswer(db, AnswerKey{ResponseID: response.ID, QuestionID: question.ID})
	require.NoError(t, err)
	assert.Len(t, stored.SelectedOptions, 2)
}

func TestUpsertAnswerRejectsShapeMismatch(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	scenario := newScenario(t, db, survey, nil)
	response := newResponse(t, db, survey, 1)
	text := createQuestion(t, db, models.QuestionKindSurvey, survey.ID, models.QuestionTypeText, false)
	unit := createQuestion(t, db, models.QuestionKindPlanningUnit, scenario.ID, models.QuestionTypeText, false)

	_, err := UpsertAnswer(db, text, AnswerKey{ResponseID: response.ID}, NumberValue(1))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = UpsertAnswer(db, text, AnswerKey{ResponseID: response.ID}, nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = UpsertAnswer(db, text, AnswerKey{ResponseID: response.ID, PlanningUnitID: 3}, TextValue("x"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = UpsertAnswer(db, unit, AnswerKey{ResponseID: response.ID}, TextValue("x"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestHasAnswerPresencePolicies(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	response := newResponse(t, db, survey, 1)
	question := createQuestion(t, db, models.QuestionKindSurvey, survey.ID, models.QuestionTypeText, true)
	key := AnswerKey{ResponseID: response.ID, QuestionID: question.ID}

	_, err := UpsertAnswer(db, question, key, TextValue(""))
	require.NoError(t, err)

	t.Run("value", func(t *testing.T) {
		usePresencePolicy(t, PresenceValue)
		has, err := HasAnswer(db, key)
		require.NoError(t, err)
		assert.False(t, has)

		completed, err := IsResponseCompleted(db, response)
		require.NoError(t, err)
		assert.False(t, completed)
	})

	t.Run("row", func(t *testing.T) {
		usePresencePolicy(t, PresenceRow)
		has, err := HasAnswer(db, key)
		require.NoError(t, err)
		assert.True(t, has)

		completed, err := IsResponseCompleted(db, response)
		require.NoError(t, err)
		assert.True(t, completed)
	})
}

func TestAnsweredKeysSpansUnits(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	family, units := newFamily(t, db, "coast", 2)
	scenario := newScenario(t, db, survey, &family)
	response := newResponse(t, db, survey, 1)
	question := createQuestion(t, db, models.QuestionKindPlanningUnit, scenario.ID, models.QuestionTypeText, true)

	for _, unit := range units {
		_, err := UpsertAnswer(db, question, AnswerKey{ResponseID: response.ID, PlanningUnitID: unit}, TextValue("used"))
		require.NoError(t, err)
	}

	answered, err := AnsweredKeys(db, response.ID, []uint{question.ID})
	require.NoError(t, err)
	assert.Len(t, answered, 2)
	assert.True(t, answered[AnswerKey{ResponseID: response.ID, QuestionID: question.ID, PlanningUnitID: units[1]}])

	require.NoError(t, DeleteUnitAnswers(db, response.ID, []uint{question.ID}, units[0]))
	answered, err = AnsweredKeys(db, response.ID, []uint{question.ID})
	require.NoError(t, err)
	assert.Len(t, answered, 1)
}
