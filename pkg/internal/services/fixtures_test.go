package services

import (
	"fmt"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	conn, err := db.DB()
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, database.RunMigration(db))
	return db
}

func usePresencePolicy(t *testing.T, policy AnswerPresence) {
	t.Helper()
	previous := AnswerPresencePolicy
	AnswerPresencePolicy = policy
	t.Cleanup(func() { AnswerPresencePolicy = previous })
}

func newSurvey(t *testing.T, db *gorm.DB, mutate ...func(*models.Survey)) models.Survey {
	t.Helper()
	survey := models.Survey{Title: "Marine planning"}
	for _, fn := range mutate {
		fn(&survey)
	}
	require.NoError(t, db.Create(&survey).Error)
	return survey
}

// newFamily creates a family with the given number of units and returns the
// unit ids in creation order.
func newFamily(t *testing.T, db *gorm.DB, name string, units int) (models.PlanningUnitFamily, []uint) {
	t.Helper()
	geometries := make([]datatypes.JSON, units)
	for i := range geometries {
		geometries[i] = datatypes.JSON(fmt.Sprintf(`{"type":"Point","coordinates":[%d,0]}`, i))
	}
	family, err := NewFamily(db, name, "", nil, geometries)
	require.NoError(t, err)
	return family, lo.Map(family.Units, func(item models.PlanningUnit, _ int) uint {
		return item.ID
	})
}

func newScenario(t *testing.T, db *gorm.DB, survey models.Survey, family *models.PlanningUnitFamily, mutate ...func(*models.Scenario)) models.Scenario {
	t.Helper()
	scenario := NewScenarioFromDefinition(survey.ID, ScenarioDefinition{Name: "Fishing grounds"})
	if family != nil {
		scenario.FamilyID = lo.ToPtr(family.ID)
	}
	for _, fn := range mutate {
		fn(&scenario)
	}
	require.NoError(t, db.Create(&scenario).Error)
	return scenario
}

func createQuestion(t *testing.T, db *gorm.DB, kind models.QuestionKind, parent uint, kindOfQuestion models.QuestionType, required bool, options ...string) models.Question {
	t.Helper()
	question := models.Question{
		Kind:       kind,
		ParentID:   parent,
		Text:       fmt.Sprintf("%s question", kindOfQuestion),
		Type:       kindOfQuestion,
		IsRequired: required,
		Options: lo.Map(options, func(item string, idx int) models.QuestionOption {
			return models.QuestionOption{Text: item, Order: idx}
		}),
	}
	require.NoError(t, db.Create(&question).Error)
	return question
}

func newResponse(t *testing.T, db *gorm.DB, survey models.Survey, account uint) models.SurveyResponse {
	t.Helper()
	response := models.SurveyResponse{SurveyID: survey.ID, AccountID: account}
	require.NoError(t, db.Create(&response).Error)
	response.Survey = survey
	return response
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
