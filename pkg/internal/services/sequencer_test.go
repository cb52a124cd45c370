package services

import (
	"testing"

	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextScenarioFollowsOrderNotCreation(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	second := newScenario(t, db, survey, nil, func(s *models.Scenario) { s.Name, s.Order = "second", 2 })
	first := newScenario(t, db, survey, nil, func(s *models.Scenario) { s.Name, s.Order = "first", 1 })

	head, err := FirstScenario(db, survey.ID)
	require.NoError(t, err)
	require.NotNil(t, head)
	assert.Equal(t, first.ID, head.ID)

	next, err := NextScenarioAfter(db, survey.ID, first.ID)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, second.ID, next.ID)

	next, err = NextScenarioAfter(db, survey.ID, second.ID)
	require.NoError(t, err)
	assert.Nil(t, next)

	next, err = NextScenarioAfter(db, survey.ID, 9999)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestSortScenariosBreaksTiesByID(t *testing.T) {
	scenarios := []models.Scenario{
		{BaseModel: models.BaseModel{ID: 3}, Order: 1},
		{BaseModel: models.BaseModel{ID: 1}, Order: 1},
		{BaseModel: models.BaseModel{ID: 2}, Order: 0},
	}
	SortScenarios(scenarios)

	assert.Equal(t, uint(2), scenarios[0].ID)
	assert.Equal(t, uint(1), scenarios[1].ID)
	assert.Equal(t, uint(3), scenarios[2].ID)
	assert.Equal(t, uint(3), NextScenario(scenarios, 1).ID)
}

func TestFirstScenarioOfEmptySurvey(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)

	head, err := FirstScenario(db, survey.ID)
	require.NoError(t, err)
	assert.Nil(t, head)
}

func TestGetScenarioChecksSurvey(t *testing.T) {
	db := newTestDB(t)
	survey := newSurvey(t, db)
	other := newSurvey(t, db)
	scenario := newScenario(t, db, survey, nil)

	_, err := GetScenario(db, other.ID, scenario.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
