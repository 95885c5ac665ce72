package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes carried in the response envelope. "0000" is success;
// everything else pairs with a human-readable message.
const (
	CodeOK               = "0000"
	CodeAuthMissing      = "1001"
	CodeUnauthenticated  = "1002"
	CodeMethodNotAllowed = "1003"
	CodeForbidden        = "1004"
	CodeValidation       = "1100"
	CodeSelfReference    = "1101"
	CodeInvalidState     = "1200"
	CodeAlreadyFriends   = "1201"
	CodeDuplicateInvite  = "1202"
	CodeBlocked          = "1203"
	CodeNotFound         = "1404"
	CodeInternal         = "9000"
	CodeUnavailable      = "9001"
)

type SuccessEnvelope struct {
	Code string `json:"code"`
	Data any    `json:"data"`
}

type ErrorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, SuccessEnvelope{Code: CodeOK, Data: data})
}

func Fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorEnvelope{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, CodeValidation, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Fail(c, http.StatusUnauthorized, code, message)
}

func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, CodeNotFound, message)
}

func InternalError(c *gin.Context, message string) {
	Fail(c, http.StatusInternalServerError, CodeInternal, message)
}
