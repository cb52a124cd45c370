package admin

import (
	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/survey/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func adminImportSurvey(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}

	var data services.SurveyDefinition
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	survey, err := services.ImportSurvey(database.C, data)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	log.Info().Uint("survey", survey.ID).Int("scenarios", len(survey.Scenarios)).Msg("Imported survey definition.")

	return c.Status(fiber.StatusCreated).JSON(survey)
}

func adminDeleteSurvey(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	surveyId, err := exts.ParamID(c, "surveyId")
	if err != nil {
		return err
	}

	survey, err := services.GetSurvey(database.C, surveyId)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	if err := services.DeleteSurvey(database.C, survey); err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.SendStatus(fiber.StatusOK)
}

func adminDeleteAccountData(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	accountId, err := exts.ParamID(c, "accountId")
	if err != nil {
		return err
	}

	count, err := services.DeleteAccountData(database.C, accountId)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(fiber.Map{"count": count})
}

func adminTriggerProgressAudit(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}

	go services.DoProgressAudit()

	return c.SendStatus(fiber.StatusOK)
}

func adminGetChoiceMetric(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}
	questionId, err := exts.ParamID(c, "questionId")
	if err != nil {
		return err
	}

	question, err := services.GetQuestionByID(database.C, questionId)
	if err != nil {
		return exts.ErrorToHttp(err)
	}
	metric, err := services.GetChoiceMetric(database.C, question)
	if err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.JSON(metric)
}
