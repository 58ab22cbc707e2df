package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bank-transaction-engine/internal/api_gateway/middleware"
	"github.com/bank-transaction-engine/internal/domain/shared"
	"github.com/bank-transaction-engine/internal/domain/transaction"
	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

// ErrorInfo represents error information in a response.
// Code is the numeric failure code as a string, or a transport code such as BAD_REQUEST.
type ErrorInfo struct {
	Code    string `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// MetaInfo carries the page information of a list response
type MetaInfo struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	Total       int  `json:"total"`
	MaxPage     int  `json:"max_page"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// failureStatus maps failure kinds onto HTTP status codes
var failureStatus = map[shared.FailureKind]int{
	shared.FailureKindValidation:        http.StatusUnprocessableEntity,
	shared.FailureKindInvalidAccount:    http.StatusBadRequest,
	shared.FailureKindInsufficientFunds: http.StatusBadRequest,
	shared.FailureKindConflict:          http.StatusConflict,
	shared.FailureKindNotFound:          http.StatusNotFound,
	shared.FailureKindSystem:            http.StatusInternalServerError,
}

// NewResponse creates a new response with data
func NewResponse(data interface{}) *Response {
	return &Response{
		Data: data,
	}
}

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message string) *Response {
	return &Response{
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// NewPageResponse wraps one page of transactions with its page information
func NewPageResponse(page *transaction.Page) *Response {
	return &Response{
		Data: mapTransactionsToResponse(page.Items),
		Meta: &MetaInfo{
			Page:        page.Page,
			PageSize:    page.PageSize,
			Total:       page.Total,
			MaxPage:     page.MaxPage(),
			HasNext:     page.HasNext(),
			HasPrevious: page.HasPrevious(),
		},
	}
}

// RespondWithData sends a JSON response with data
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	response := NewResponse(data)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithError sends a JSON response with an error
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	response := NewErrorResponse(code, message)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithPage sends a JSON response with one page of transactions
func RespondWithPage(c *gin.Context, page *transaction.Page) {
	response := NewPageResponse(page)
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(http.StatusOK, response)
}

// RespondWithFailure maps an engine failure onto its status code and error envelope.
// System failures never expose their cause.
func RespondWithFailure(c *gin.Context, err error) {
	var failure *shared.Failure
	if !errors.As(err, &failure) {
		failure = shared.NewSystemFailure(err)
	}

	status, ok := failureStatus[failure.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := failure.Message
	if failure.Kind == shared.FailureKindSystem {
		message = "An internal server error occurred"
	}

	response := &Response{
		Error: &ErrorInfo{
			Code:    strconv.Itoa(failure.Code),
			Kind:    string(failure.Kind),
			Message: message,
		},
		CorrelationID: middleware.GetCorrelationID(c),
	}
	c.JSON(status, response)
}

// RespondOK sends a 200 OK response with data
func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondCreated sends a 201 Created response with data
func RespondCreated(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusCreated, data)
}

// RespondBadRequest sends a 400 Bad Request response with an error
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondNotFound sends a 404 Not Found response with an error
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondInternalError sends a 500 Internal Server Error response with an error
func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, strconv.Itoa(shared.CodeSystemError), "An internal server error occurred")
}
