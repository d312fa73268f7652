// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unisupport/internal/app/models/dto"
	"github.com/yigit/unisupport/internal/middleware"
	"github.com/yigit/unisupport/internal/pkg/apperrors"
	"github.com/yigit/unisupport/internal/pkg/auth"
)

// parseIDParam reads a positive int64 path parameter, answering 400 when it is malformed
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		ctx.AbortWithStatusJSON(http.StatusBadRequest,
			dto.NewErrorResponse(dto.ErrorCodeBadRequest, "Invalid "+name+" format"))
		return 0, false
	}
	return id, true
}

// bindJSON binds and validates the request body, answering 400 on failure
func bindJSON(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.HandleValidationError(err))
		return false
	}
	return true
}

// currentClaims returns the verified session claims, answering 401 when absent
func currentClaims(ctx *gin.Context) (*auth.Claims, bool) {
	claims, ok := middleware.GetClaims(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return nil, false
	}
	return claims, true
}
