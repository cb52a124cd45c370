package admin

import (
	"git.solsynth.dev/hypernet/survey/pkg/internal/database"
	"git.solsynth.dev/hypernet/survey/pkg/internal/http/exts"
	"git.solsynth.dev/hypernet/survey/pkg/internal/models"
	"git.solsynth.dev/hypernet/survey/pkg/internal/services"
	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func adminCreateFamily(c *fiber.Ctx) error {
	if err := exts.EnsureAdmin(c); err != nil {
		return err
	}

	var data struct {
		Name         string           `json:"name" validate:"required,max=255"`
		Description  string           `json:"description"`
		RemoteRaster *string          `json:"remote_raster" validate:"omitempty,url"`
		Units        []datatypes.JSON `json:"units"`
		// Existing units shared with this family.
		Members []uint `json:"members"`
	}
	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	var family models.PlanningUnitFamily
	if err := database.C.Transaction(func(tx *gorm.DB) error {
		var err error
		if family, err = services.NewFamily(tx, data.Name, data.Description, data.RemoteRaster, data.Units); err != nil {
			return err
		}
		return services.AddUnitsToFamily(tx, family, data.Members)
	}); err != nil {
		return exts.ErrorToHttp(err)
	}

	return c.Status(fiber.StatusCreated).JSON(family)
}
