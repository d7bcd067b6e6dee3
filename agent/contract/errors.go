package contract

import "errors"

var (
	ErrModelInvoke          = errors.New("model invoke failed")
	ErrToolNotFound         = errors.New("tool not found")
	ErrToolExecution        = errors.New("tool execution failed")
	ErrDuplicateTool        = errors.New("tool already registered")
	ErrConfirmationRequired = errors.New("tool requires explicit confirmation")
	ErrValidation           = errors.New("validation failed")
)
