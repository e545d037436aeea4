package handler

import (
	"errors"
	"net/http"

	"github.com/SairajMN/autocrowd/internal/escrow"
	"github.com/SairajMN/autocrowd/internal/token"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{Success: true, Message: message, Data: data})
}

// ErrorResponse 错误响应，data恒为空
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{Success: false, Message: message})
}

// EngineErrorResponse 按哨兵错误类别返回对应状态码的错误响应
func EngineErrorResponse(c *gin.Context, err error) {
	ErrorResponse(c, statusFromError(err), err.Error())
}

// statusFromError 把引擎哨兵错误映射为HTTP状态码，全部映射集中在这里
func statusFromError(err error) int {
	switch {
	case errors.Is(err, escrow.ErrCampaignNotFound),
		errors.Is(err, escrow.ErrMilestoneNotFound):
		return http.StatusNotFound

	case errors.Is(err, escrow.ErrNotCreator),
		errors.Is(err, escrow.ErrNotOracle),
		errors.Is(err, escrow.ErrNotEligibleToVote),
		errors.Is(err, escrow.ErrCreatorNotEligible):
		return http.StatusForbidden

	case errors.Is(err, escrow.ErrValidation),
		errors.Is(err, escrow.ErrZeroAmount),
		errors.Is(err, escrow.ErrBelowMinimum),
		errors.Is(err, escrow.ErrAboveMaximum),
		errors.Is(err, escrow.ErrInvalidOffset),
		errors.Is(err, escrow.ErrMilestoneBudget):
		return http.StatusBadRequest

	case errors.Is(err, escrow.ErrInsufficientEscrow),
		errors.Is(err, token.ErrInsufficientAllowance),
		errors.Is(err, token.ErrInsufficientBalance),
		errors.Is(err, token.ErrTransferFailed):
		return http.StatusUnprocessableEntity

	case errors.Is(err, escrow.ErrCampaignClosed),
		errors.Is(err, escrow.ErrCampaignEnded),
		errors.Is(err, escrow.ErrMilestoneNotPending),
		errors.Is(err, escrow.ErrMilestoneNotSubmitted),
		errors.Is(err, escrow.ErrAlreadyReleased),
		errors.Is(err, escrow.ErrAlreadyVoted),
		errors.Is(err, escrow.ErrVotingNotOpen),
		errors.Is(err, escrow.ErrVotingClosed),
		errors.Is(err, escrow.ErrVotingStillOpen),
		errors.Is(err, escrow.ErrAlreadyFinalized),
		errors.Is(err, escrow.ErrNothingToRefund),
		errors.Is(err, escrow.ErrRefundNotYetAvailable):
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
