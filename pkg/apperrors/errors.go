package apperrors

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnknownAgentType    = errors.New("unknown agent type")
	ErrInvalidStatus       = errors.New("invalid workflow status")
	ErrInvalidRole         = errors.New("invalid role")
	ErrPlanUpgradeRequired = errors.New("plan upgrade required for this agent type")
	ErrUsageLimitReached   = errors.New("usage limit reached")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
)
