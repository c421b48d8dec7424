package routes

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/travel-snapshot/travel-api/internal/logging"
	apperrors "github.com/travel-snapshot/travel-api/pkg/errors"
)

// retryAfterSeconds is advertised on retryable failures; it matches the
// default upstream breaker reset timeout.
const retryAfterSeconds = "30"

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseBody decodes a JSON body into out and runs its validate tags.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewAppError(apperrors.CodeValidation, "Invalid request body", err)
	}
	if err := validate.Struct(out); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) *apperrors.AppError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewAppError(apperrors.CodeValidation, "Invalid request", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return apperrors.NewAppError(apperrors.CodeValidation, strings.Join(msgs, "; "), err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "latitude", "longitude":
		return fmt.Sprintf("%s must be a valid %s", field, fe.Tag())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return field + " is invalid"
	}
}

// ErrorHandler renders every error as {"error":{code,message,request_id}}.
// Causes are logged, never written to the response.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr, ok := apperrors.As(err)
		if !ok {
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				appErr = fromFiberError(fiberErr)
			} else {
				appErr = apperrors.Internal(err)
			}
		}

		status := appErr.HTTPStatus()
		if status >= fiber.StatusInternalServerError {
			logging.WithRequestID(logger, requestID(c)).WithError(err).WithFields(logrus.Fields{
				"method": c.Method(),
				"path":   c.Path(),
				"status": status,
			}).Error("Request error")
		}
		if appErr.IsRetryable() {
			c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
		}

		return c.Status(status).JSON(appErr.ToErrorResponse(requestID(c)))
	}
}

func fromFiberError(e *fiber.Error) *apperrors.AppError {
	switch {
	case e.Code == fiber.StatusNotFound:
		return apperrors.New(apperrors.CodeNotFound, "The requested resource was not found")
	case e.Code >= fiber.StatusBadRequest && e.Code < fiber.StatusInternalServerError:
		return apperrors.New(apperrors.CodeValidation, e.Message)
	default:
		return apperrors.NewAppError(apperrors.CodeInternalError, "Internal server error", e)
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok && id != "" {
		return id
	}
	return c.Get(fiber.HeaderXRequestID)
}
