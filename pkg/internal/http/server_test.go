package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"git.solsynth.dev/hypernet/survey/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	viper.Set("security.jwt_secret", "test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	conn, err := db.DB()
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	require.NoError(t, database.RunMigration(db))

	previous := database.C
	database.C = db
	t.Cleanup(func() {
		database.C = previous
		_ = conn.Close()
	})

	return NewServer().Handler()
}

func tokenFor(t *testing.T, account exts.Account) string {
	t.Helper()
	token, err := exts.IssueToken(account, time.Hour)
	require.NoError(t, err)
	return token
}

func call(t *testing.T, app *fiber.App, method, path, token string, body any, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := jsoniter.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if len(token) > 0 {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, jsoniter.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

func TestSurveyFlow(t *testing.T) {
	app := newTestApp(t)
	admin := tokenFor(t, exts.Account{ID: 1, IsAdmin: true})
	user := tokenFor(t, exts.Account{ID: 2, Groups: []uint{9}})

	var family models.PlanningUnitFamily
	status := call(t, app, fiber.MethodPost, "/api/admin/families", admin, fiber.Map{
		"name":          "coast",
		"remote_raster": "https://tiles.example.org/coast.tif",
		"units":         []any{fiber.Map{"type": "Point"}, fiber.Map{"type": "Point"}},
	}, &family)
	require.Equal(t, fiber.StatusCreated, status)
	require.Len(t, family.Units, 2)
	require.NotNil(t, family.RemoteRaster)
	assert.Equal(t, "https://tiles.example.org/coast.tif", *family.RemoteRaster)

	var survey models.Survey
	status = call(t, app, fiber.MethodPost, "/api/admin/surveys", admin, services.SurveyDefinition{
		Title:  "Coastal use",
		Groups: []uint{9},
		Questions: []services.QuestionDefinition{{
			Text: "Your role", Type: models.QuestionTypeSingleChoice, IsRequired: true,
			Options: []services.OptionDefinition{{Text: "Fisher"}, {Text: "Diver"}},
		}},
		Scenarios: []services.ScenarioDefinition{{
			Name:     "Fishing",
			FamilyID: &family.ID,
			PlanningUnitQuestions: []services.QuestionDefinition{
				{Text: "Catch", Type: models.QuestionTypeNumber, IsRequired: true},
			},
		}},
	}, &survey)
	require.Equal(t, fiber.StatusCreated, status)
	require.Len(t, survey.Scenarios, 1)
	scenario := survey.Scenarios[0]

	var listing []services.SurveySummary
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, "/api/surveys", user, nil, &listing))
	require.Len(t, listing, 1)
	assert.Equal(t, survey.ID, listing[0].ID)

	var started struct {
		Response        models.SurveyResponse `json:"response"`
		FirstScenarioID *uint                 `json:"first_scenario_id"`
	}
	status = call(t, app, fiber.MethodPost, fmt.Sprintf("/api/surveys/%d/responses", survey.ID), user, nil, &started)
	require.Equal(t, fiber.StatusOK, status)
	require.NotNil(t, started.FirstScenarioID)
	assert.Equal(t, scenario.ID, *started.FirstScenarioID)
	base := fmt.Sprintf("/api/responses/%d", started.Response.ID)

	var detail struct {
		Questions []models.Question `json:"questions"`
		Completed bool              `json:"completed"`
	}
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, base, user, nil, &detail))
	require.Len(t, detail.Questions, 1)
	assert.False(t, detail.Completed)
	role := detail.Questions[0]

	status = call(t, app, fiber.MethodPut, base+"/answers", user, fiber.Map{
		"answers": fiber.Map{strconv.Itoa(int(role.ID)): role.Options[0].ID},
	}, nil)
	require.Equal(t, fiber.StatusOK, status)

	var view struct {
		NextScenarioID        *uint             `json:"next_scenario_id"`
		PlanningUnitQuestions []models.Question `json:"planning_unit_questions"`
	}
	scenarioPath := fmt.Sprintf("%s/scenarios/%d", base, scenario.ID)
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, scenarioPath, user, nil, &view))
	assert.Nil(t, view.NextScenarioID)
	require.Len(t, view.PlanningUnitQuestions, 1)
	catch := view.PlanningUnitQuestions[0]

	units := []uint{family.Units[0].ID, family.Units[1].ID}
	var scenarioStatus services.ScenarioStatus
	status = call(t, app, fiber.MethodPut, scenarioPath+"/units", user, fiber.Map{
		"units":   units,
		"coins":   50,
		"answers": fiber.Map{strconv.Itoa(int(catch.ID)): 12},
	}, &scenarioStatus)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, 100, scenarioStatus.CoinsAssigned)
	assert.Equal(t, 2, scenarioStatus.AreasSelected)
	assert.True(t, scenarioStatus.ScenarioCompleted)

	var progress services.ResponseProgress
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, base+"/completion", user, nil, &progress))
	assert.True(t, progress.Completed)

	var unit services.UnitSelectionDetail
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, fmt.Sprintf("%s/units/%d", scenarioPath, units[0]), user, nil, &unit))
	require.NotNil(t, unit.Coins)
	assert.Equal(t, 50, *unit.Coins)

	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodDelete, fmt.Sprintf("%s/units/%d", scenarioPath, units[0]), user, nil, &scenarioStatus))
	assert.Equal(t, 50, scenarioStatus.CoinsAvailable)
	assert.False(t, scenarioStatus.ScenarioCompleted)

	var metric services.ChoiceMetric
	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodGet, fmt.Sprintf("/api/admin/questions/%d/metric", role.ID), admin, nil, &metric))
	assert.EqualValues(t, 1, metric.TotalAnswer)
	assert.EqualValues(t, 1, metric.ByOptions[role.Options[0].ID])
}

func TestSurveyErrors(t *testing.T) {
	app := newTestApp(t)
	admin := tokenFor(t, exts.Account{ID: 1, IsAdmin: true})
	user := tokenFor(t, exts.Account{ID: 2})

	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, fiber.MethodGet, "/api/surveys", "", nil, nil))
	assert.Equal(t, fiber.StatusUnauthorized, call(t, app, fiber.MethodGet, "/api/surveys", "garbage", nil, nil))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodPost, "/api/admin/surveys", user, services.SurveyDefinition{Title: "x"}, nil))
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodPost, "/api/admin/surveys", admin, services.SurveyDefinition{}, nil))
	assert.Equal(t, fiber.StatusNotFound, call(t, app, fiber.MethodPost, "/api/surveys/404/responses", user, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, call(t, app, fiber.MethodGet, "/api/responses/404", user, nil, nil))

	var restricted models.Survey
	require.Equal(t, fiber.StatusCreated, call(t, app, fiber.MethodPost, "/api/admin/surveys", admin, services.SurveyDefinition{
		Title: "Members only", Groups: []uint{3},
	}, &restricted))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodPost, fmt.Sprintf("/api/surveys/%d/responses", restricted.ID), user, nil, nil))

	var ended models.Survey
	require.Equal(t, fiber.StatusCreated, call(t, app, fiber.MethodPost, "/api/admin/surveys", admin, services.SurveyDefinition{
		Title: "Closed", EndAt: lo.ToPtr(time.Now().Add(-time.Hour)),
	}, &ended))
	assert.Equal(t, fiber.StatusForbidden, call(t, app, fiber.MethodPost, fmt.Sprintf("/api/surveys/%d/responses", ended.ID), user, nil, nil))

	require.Equal(t, fiber.StatusOK, call(t, app, fiber.MethodDelete, fmt.Sprintf("/api/admin/surveys/%d", ended.ID), admin, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, call(t, app, fiber.MethodDelete, fmt.Sprintf("/api/admin/surveys/%d", ended.ID), admin, nil, nil))

	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodDelete, "/api/admin/accounts/abc", admin, nil, nil))
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodDelete, "/api/admin/surveys/0", admin, nil, nil))
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodGet, "/api/admin/questions/abc/metric", admin, nil, nil))
	assert.Equal(t, fiber.StatusBadRequest, call(t, app, fiber.MethodPost, "/api/admin/families", admin, fiber.Map{
		"name": "reef", "remote_raster": "not a url",
	}, nil))
}
