package controller

import (
	"errors"

	"crimson-crm-be/internal/dto"
	"crimson-crm-be/internal/pkg/mailer"
	"crimson-crm-be/internal/pkg/serverutils"
	"crimson-crm-be/internal/service"
	"crimson-crm-be/pkg/biostate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IProfileController interface {
	RegisterRoutes(r fiber.Router)
	Mount(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Unmount(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	BeginEdit(ctx *fiber.Ctx) error
	UpdateEdit(ctx *fiber.Ctx) error
	Save(ctx *fiber.Ctx) error
	Cancel(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Email(ctx *fiber.Ctx) error
	HideCitation(ctx *fiber.Ctx) error
	RestoreCitation(ctx *fiber.Ctx) error
	SubmitFeedback(ctx *fiber.Ctx) error
}

type profileController struct {
	profileService service.IProfileService
	guard          fiber.Handler
}

// NewProfileController builds the controller; guard, when non-nil, runs before
// every profile route.
func NewProfileController(profileService service.IProfileService, guard fiber.Handler) IProfileController {
	return &profileController{
		profileService: profileService,
		guard:          guard,
	}
}

func (c *profileController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/profiles")
	if c.guard != nil {
		h.Use(c.guard)
	}
	h.Post("", c.Mount)
	h.Get(":sessionId", c.Show)
	h.Delete(":sessionId", c.Unmount)

	h.Post(":sessionId/bio/generate", c.Generate)
	h.Post(":sessionId/bio/edit", c.BeginEdit)
	h.Put(":sessionId/bio/edit", c.UpdateEdit)
	h.Post(":sessionId/bio/save", c.Save)
	h.Post(":sessionId/bio/cancel", c.Cancel)
	h.Post(":sessionId/bio/reset", c.Reset)
	h.Get(":sessionId/bio/export", c.Export)
	h.Post(":sessionId/bio/email", c.Email)

	h.Post(":sessionId/citations/hide", c.HideCitation)
	h.Post(":sessionId/citations/restore", c.RestoreCitation)

	h.Post(":sessionId/feedback", c.SubmitFeedback)
}

func (c *profileController) Mount(ctx *fiber.Ctx) error {
	var req dto.MountProfileRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.profileService.Mount(ctx.UserContext(), &req)
	if err != nil {
		return profileError(err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success mount profile", res))
}

func (c *profileController) Show(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.profileService.Show(ctx.UserContext(), id)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show profile", res))
}

func (c *profileController) Unmount(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	if err := c.profileService.Unmount(ctx.UserContext(), id); err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success unmount profile", nil))
}

func (c *profileController) Generate(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.profileService.Generate(ctx.UserContext(), id)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success generate bio", res))
}

func (c *profileController) BeginEdit(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.profileService.BeginEdit(ctx.UserContext(), id)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success begin edit", res))
}

func (c *profileController) UpdateEdit(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	var req dto.EditBioRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	res, err := c.profileService.UpdateEdit(ctx.UserContext(), id, &req)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update edit", res))
}

func (c *profileController) Save(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.profileService.Save(ctx.UserContext(), id)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success save bio", res))
}

func (c *profileController) Cancel(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.profileService.Cancel(ctx.UserContext(), id)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success cancel edit", res))
}

func (c *profileController) Reset(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	res, err := c.profileService.Reset(ctx.UserContext(), id)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success reset bio", res))
}

func (c *profileController) Export(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	text, err := c.profileService.Export(ctx.UserContext(), id)
	if err != nil {
		return profileError(err)
	}
	ctx.Type("txt", "utf-8")
	return ctx.SendString(text)
}

func (c *profileController) Email(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	var req dto.EmailBioRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.profileService.Email(ctx.UserContext(), id, &req); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			return fiber.NewError(fiber.StatusServiceUnavailable, "Email delivery is not configured")
		}
		mapped := profileError(err)
		var fe *fiber.Error
		if errors.As(mapped, &fe) {
			return fe
		}
		return fiber.NewError(fiber.StatusBadGateway, "Failed to send email")
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Success email bio", nil))
}

func (c *profileController) HideCitation(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	var req dto.HideCitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.profileService.HideCitation(ctx.UserContext(), id, &req)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success hide citation", res))
}

func (c *profileController) RestoreCitation(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	var req dto.RestoreCitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.profileService.RestoreCitation(ctx.UserContext(), id, &req)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success restore citation", res))
}

func (c *profileController) SubmitFeedback(ctx *fiber.Ctx) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}
	var req dto.FeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.profileService.SubmitFeedback(ctx.UserContext(), id, &req)
	if err != nil {
		return profileError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success submit feedback", res))
}

func sessionID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusNotFound, service.ErrSessionNotFound.Error())
	}
	return id, nil
}

// profileError maps service and state errors onto HTTP statuses. Unknown errors
// pass through as 500.
func profileError(err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, biostate.ErrNoActiveBio),
		errors.Is(err, biostate.ErrNotEditing),
		errors.Is(err, biostate.ErrUnsavedEdits),
		errors.Is(err, biostate.ErrGenerating),
		errors.Is(err, biostate.ErrEmptyBio),
		errors.Is(err, biostate.ErrStaleGeneration):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, biostate.ErrSentenceIndex),
		errors.Is(err, biostate.ErrInvalidCitation),
		errors.Is(err, biostate.ErrInvalidFeedback),
		errors.Is(err, service.ErrInvalidEdit):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
