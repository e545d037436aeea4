package escrow

import (
	"errors"
)

// 校验类错误，入参形状或范围不合法，不改变任何状态
var (
	ErrValidation      = errors.New("validation failed")
	ErrZeroAmount      = errors.New("amount must be positive")
	ErrBelowMinimum    = errors.New("amount below campaign minimum")
	ErrAboveMaximum    = errors.New("amount above campaign maximum")
	ErrInvalidOffset   = errors.New("page offset out of range")
	ErrMilestoneBudget = errors.New("milestone amounts exceed campaign goal")
)

// 查找类错误
var (
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
)

// 状态冲突类错误，操作在当前状态下不合法，不改变任何状态
var (
	ErrCampaignClosed        = errors.New("campaign closed")
	ErrCampaignEnded         = errors.New("campaign already ended")
	ErrMilestoneNotPending   = errors.New("milestone not pending")
	ErrMilestoneNotSubmitted = errors.New("milestone not awaiting verdict")
	ErrAlreadyReleased       = errors.New("funds already released")
	ErrAlreadyVoted          = errors.New("already voted on this milestone")
	ErrVotingNotOpen         = errors.New("voting not open")
	ErrVotingClosed          = errors.New("voting closed")
	ErrVotingStillOpen       = errors.New("voting window still open")
	ErrAlreadyFinalized      = errors.New("milestone already finalized")
	ErrNothingToRefund       = errors.New("nothing to refund")
	ErrRefundNotYetAvailable = errors.New("refund not yet available")
)

// 资源类错误，托管池余量不足（网关侧的余额/授权错误原样透传）
var (
	ErrInsufficientEscrow = errors.New("insufficient escrow balance")
)

// 授权类错误
var (
	ErrNotCreator         = errors.New("caller is not the campaign creator")
	ErrNotOracle          = errors.New("caller is not the authorized oracle")
	ErrNotEligibleToVote  = errors.New("not eligible to vote")
	ErrCreatorNotEligible = errors.New("creator has not passed kyc")
)
