package handler

import "github.com/aurum/jewelstore/internal/interfaces/http/dto"

// APIResponse is the typed success envelope used in the OpenAPI docs
type APIResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    T         `json:"data"`
	Meta    *dto.Meta `json:"meta,omitempty"`
}

// ErrorResponse is the error envelope used in the OpenAPI docs
type ErrorResponse struct {
	Success bool          `json:"success" example:"false"`
	Error   dto.ErrorInfo `json:"error"`
}

// SuccessResponse is an envelope with no data payload
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}
