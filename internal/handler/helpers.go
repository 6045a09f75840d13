package handler

import (
	"errors"
	"net/http"
	"reflect"

	"sukiism/internal/apierror"
	"sukiism/internal/dto"
	"sukiism/internal/model"
	"sukiism/internal/service"
	"sukiism/internal/sheet"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// gte=0 and gt=0 work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

func runValidation(c *gin.Context, req interface{}) bool {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string)
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service and store errors onto HTTP statuses. Anything
// unclassified is attached to the context for ErrorHandler to log and answered
// with a generic 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New("invalid credentials"))
	case errors.Is(err, sheet.ErrRateLimited):
		c.Header("Retry-After", "10")
		c.JSON(http.StatusTooManyRequests, apierror.New("spreadsheet quota exceeded, try again shortly"))
	case errors.Is(err, sheet.ErrUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, apierror.New("spreadsheet store unavailable"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}

// ── DTO mapping ──────────────────────────────────────────────────────────────

func toItemResponse(it model.Item) dto.ItemResponse {
	return dto.ItemResponse{
		Code:          it.Code,
		Name:          it.Name,
		Category:      it.Category,
		Unit:          it.Unit,
		UnitPrice:     it.UnitPrice,
		MinStock:      it.MinStock,
		Quantity:      it.Quantity,
		Status:        it.Status,
		Value:         it.Value,
		ShelfLifeDays: it.ShelfLifeDays,
	}
}

func toRestockResponses(entries []model.RestockEntry) []dto.RestockResponse {
	out := make([]dto.RestockResponse, len(entries))
	for i, e := range entries {
		out[i] = dto.RestockResponse{
			Code:     e.Code,
			Name:     e.Name,
			Unit:     e.Unit,
			Quantity: e.Quantity,
			MinStock: e.MinStock,
			Needed:   e.Needed,
		}
	}
	return out
}

func toTransactionResponse(tx model.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		Row:           tx.Row,
		Approved:      tx.Approved,
		Order:         tx.Order,
		Date:          tx.Date,
		ItemCode:      tx.ItemCode,
		ItemName:      tx.ItemName,
		Type:          tx.Type,
		Quantity:      tx.Quantity,
		ShelfLifeDays: tx.ShelfLifeDays,
		Expiry:        tx.Expiry,
		RemainingDays: tx.RemainingDays,
		Requester:     tx.Requester,
	}
}
