package controller

import (
	"errors"

	"crimson-crm-be/internal/dto"
	"crimson-crm-be/internal/pkg/logger"
	"crimson-crm-be/internal/pkg/serverutils"
	"crimson-crm-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IBioController interface {
	RegisterRoutes(r fiber.Router)
	GenerateBio(ctx *fiber.Ctx) error
}

type bioController struct {
	bioService service.IBioService
	logger     logger.ILogger
}

func NewBioController(bioService service.IBioService, log logger.ILogger) IBioController {
	return &bioController{
		bioService: bioService,
		logger:     log,
	}
}

// RegisterRoutes mounts the public proxy endpoint. Its responses use the
// {success, error} shape the frontends parse, not BaseResponse.
func (c *bioController) RegisterRoutes(r fiber.Router) {
	r.Post("/generate-bio", c.GenerateBio)
}

func (c *bioController) GenerateBio(ctx *fiber.Ctx) error {
	var req dto.BioRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.BioErrorResponse{Success: false, Error: "Invalid request body"})
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(dto.BioErrorResponse{Success: false, Error: "Name is required"})
		}
		return err
	}

	res, err := c.bioService.GenerateBio(ctx.UserContext(), &req)
	if errors.Is(err, service.ErrNameRequired) {
		return ctx.Status(fiber.StatusBadRequest).JSON(dto.BioErrorResponse{Success: false, Error: "Name is required"})
	}
	if err != nil {
		c.logger.Error("BioController", "Unexpected bio service error", map[string]interface{}{"error": err})
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.BioErrorResponse{Success: false, Error: "Internal server error"})
	}

	return ctx.JSON(res)
}
