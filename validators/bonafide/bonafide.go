package bonafideValidator

import (
	"strings"
	"time"

	"github.com/manasaistanly/campus-approval-system/middleware"

	"github.com/gofiber/fiber/v2"
)

// CreateRequest validates a new certificate request. Documents arrive as
// multipart files and are handled by the controller.
func CreateRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PurposeID        uint   `json:"purposeId" form:"purposeId"`
			FormalLetterText string `json:"formalLetterText" form:"formalLetterText"`
			DeliveryMode     string `json:"deliveryMode" form:"deliveryMode"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.PurposeID == 0 {
			errors["purposeId"] = "Purpose is required!"
		}

		reqData.FormalLetterText = strings.TrimSpace(reqData.FormalLetterText)
		if reqData.FormalLetterText == "" {
			errors["formalLetterText"] = "Formal letter text is required!"
		}

		reqData.DeliveryMode = strings.ToUpper(strings.TrimSpace(reqData.DeliveryMode))
		if reqData.DeliveryMode != "PHYSICAL" && reqData.DeliveryMode != "DIGITAL" {
			errors["deliveryMode"] = "Invalid delivery mode! Allowed: PHYSICAL, DIGITAL"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedRequest", reqData)
		return c.Next()
	}
}

// Reject validates the rejection payload.
func Reject() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Reason string `json:"reason"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Reason = strings.TrimSpace(reqData.Reason)
		if reqData.Reason == "" {
			errors["reason"] = "Rejection reason is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedReject", reqData)
		return c.Next()
	}
}

// SubmitFees validates the Office's fee breakdown.
func SubmitFees() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			TuitionFees     float64  `json:"tuitionFees"`
			ExamFees        float64  `json:"examFees"`
			HostelFees      *float64 `json:"hostelFees"`
			BooksStationery *float64 `json:"booksStationery"`
			LaptopPurchase  *float64 `json:"laptopPurchase"`
			ProjectExpenses *float64 `json:"projectExpenses"`
			CertificateDate string   `json:"certificateDate"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.TuitionFees <= 0 {
			errors["tuitionFees"] = "Tuition fees must be greater than 0!"
		}
		if reqData.ExamFees <= 0 {
			errors["examFees"] = "Exam fees must be greater than 0!"
		}
		for field, v := range map[string]*float64{
			"hostelFees":      reqData.HostelFees,
			"booksStationery": reqData.BooksStationery,
			"laptopPurchase":  reqData.LaptopPurchase,
			"projectExpenses": reqData.ProjectExpenses,
		} {
			if v != nil && *v < 0 {
				errors[field] = "Amount must not be negative!"
			}
		}

		var certDate time.Time
		if reqData.CertificateDate == "" {
			errors["certificateDate"] = "Certificate date is required!"
		} else {
			parsed, err := time.Parse("2006-01-02", reqData.CertificateDate)
			if err != nil {
				errors["certificateDate"] = "Invalid certificate date! Expected format: YYYY-MM-DD"
			} else {
				certDate = parsed
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedFees", reqData)
		c.Locals("validatedCertificateDate", certDate)
		return c.Next()
	}
}
