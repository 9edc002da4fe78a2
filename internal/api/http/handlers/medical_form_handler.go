package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/wahid-dev1/semina/internal/api/dto"
	"github.com/wahid-dev1/semina/internal/service"
)

// MedicalFormHandler exposes the public intake form.
type MedicalFormHandler struct {
	forms *service.MedicalFormService
}

// NewMedicalFormHandler constructs handler.
func NewMedicalFormHandler(forms *service.MedicalFormService) *MedicalFormHandler {
	return &MedicalFormHandler{forms: forms}
}

// Submit handles POST /medical-form/submit.
func (h *MedicalFormHandler) Submit(c *fiber.Ctx) error {
	var req dto.MedicalFormRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.forms.Submit(c.UserContext(), service.MedicalFormInput{
		BranchID:           req.BranchID,
		Firstname:          req.Firstname,
		Lastname:           req.Lastname,
		Email:              req.Email,
		Phone:              req.Phone,
		FieldOfApplication: req.FieldOfApplication,
		Pregnancy:          req.Pregnancy,
		Diseases:           req.Diseases,
		HealthIssues:       req.HealthIssues,
		DrugsAndImplants:   req.DrugsAndImplants,
		GenericNote:        req.GenericNote,
		TermsAccepted:      req.TermsAccepted,
		Signature:          req.Signature,
	}, clientInfo(c))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.MedicalFormResponse{
		Customer:       customerResponse(res.Customer),
		MedicalHistory: medicalHistoryResponse(res.History),
		QRCode:         qrCodeResponse(res.QRCode),
	}})
}

// Options handles GET /medical-form/options.
func (h *MedicalFormHandler) Options(c *fiber.Ctx) error {
	options, err := h.forms.Options(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": options})
}
