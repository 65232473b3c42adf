package bonafideController

import (
	"errors"
	"fmt"
	"time"

	"github.com/manasaistanly/campus-approval-system/config"
	"github.com/manasaistanly/campus-approval-system/middleware"
	"github.com/manasaistanly/campus-approval-system/repository"
	"github.com/manasaistanly/campus-approval-system/services"
	"github.com/manasaistanly/campus-approval-system/utils"
	"github.com/manasaistanly/campus-approval-system/workflow"

	"github.com/gofiber/fiber/v2"
)

// Service is wired up in main before the routes are registered.
var Service *services.BonafideService

const maxDocuments = 5

func actorFromCtx(c *fiber.Ctx) (workflow.Actor, bool) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return workflow.Actor{}, false
	}
	role, ok := c.Locals("role").(string)
	if !ok || role == "" {
		return workflow.Actor{}, false
	}
	return workflow.Actor{UserID: userID, Role: workflow.Role(role)}, true
}

// respondDomainError maps workflow sentinel errors onto HTTP statuses.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Request not found!", nil)
	case errors.Is(err, workflow.ErrUnauthorized):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, err.Error(), nil)
	case errors.Is(err, workflow.ErrValidation):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	case errors.Is(err, workflow.ErrInvalidState), errors.Is(err, workflow.ErrConflict):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, err.Error(), nil)
	}
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
}

// CreateRequest files a new bonafide request for the logged-in student,
// storing up to five supporting documents.
func CreateRequest(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedRequest").(*struct {
		PurposeID        uint   `json:"purposeId" form:"purposeId"`
		FormalLetterText string `json:"formalLetterText" form:"formalLetterText"`
		DeliveryMode     string `json:"deliveryMode" form:"deliveryMode"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var documents []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["documents"]
		if len(files) > maxDocuments {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false,
				fmt.Sprintf("At most %d documents are allowed!", maxDocuments), nil)
		}
		for _, file := range files {
			path, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
			if err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store document!", nil)
			}
			documents = append(documents, path)
		}
	}

	request, err := Service.Create(repository.CreateInput{
		StudentID:        actor.UserID,
		PurposeID:        reqData.PurposeID,
		FormalLetterText: reqData.FormalLetterText,
		DeliveryMode:     workflow.DeliveryMode(reqData.DeliveryMode),
		Documents:        documents,
	})
	if err != nil {
		if errors.Is(err, workflow.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Unknown purpose!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create request!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Request submitted successfully!", request)
}

// ListRequests returns the request history visible to the caller.
func ListRequests(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requests, err := Service.List(actor)
	if err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Requests fetched successfully!", requests)
}

// ListPending returns the requests waiting on the caller's role.
func ListPending(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	requests, err := Service.Pending(actor)
	if err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending requests fetched successfully!", requests)
}

// ListPurposes returns the active certificate purposes.
func ListPurposes(c *fiber.Ctx) error {
	purposes, err := Service.Purposes()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch purposes!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Purposes fetched successfully!", purposes)
}

// Approve advances the request at the caller's stage.
func Approve(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	request, err := Service.Approve(c.Params("id"), actor)
	if err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Request approved successfully!", request)
}

// Reject terminates the request with the supplied reason.
func Reject(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedReject").(*struct {
		Reason string `json:"reason"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	request, err := Service.Reject(c.Params("id"), actor, reqData.Reason)
	if err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Request rejected.", request)
}

// SubmitFees records the Office's fee breakdown on the request.
func SubmitFees(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedFees").(*struct {
		TuitionFees     float64  `json:"tuitionFees"`
		ExamFees        float64  `json:"examFees"`
		HostelFees      *float64 `json:"hostelFees"`
		BooksStationery *float64 `json:"booksStationery"`
		LaptopPurchase  *float64 `json:"laptopPurchase"`
		ProjectExpenses *float64 `json:"projectExpenses"`
		CertificateDate string   `json:"certificateDate"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	certDate, ok := c.Locals("validatedCertificateDate").(time.Time)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	fees := workflow.FeeDetails{
		TuitionFees:     reqData.TuitionFees,
		ExamFees:        reqData.ExamFees,
		HostelFees:      reqData.HostelFees,
		BooksStationery: reqData.BooksStationery,
		LaptopPurchase:  reqData.LaptopPurchase,
		ProjectExpenses: reqData.ProjectExpenses,
		CertificateDate: certDate,
	}

	request, err := Service.SubmitFees(c.Params("id"), actor, fees)
	if err != nil {
		return respondDomainError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Fee structure submitted successfully!", request)
}

// Download streams the certificate PDF when the request is eligible.
func Download(c *fiber.Ctx) error {
	actor, ok := actorFromCtx(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	buffer, err := Service.Download(c.Params("id"), actor)
	if err != nil {
		return respondDomainError(c, err)
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="bonafide.pdf"`)
	return c.Send(buffer)
}
