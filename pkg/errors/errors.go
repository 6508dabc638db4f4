package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 打卡事件归一化错误。
var (
	InvalidPunch      = Definition{Code: "INVALID_PUNCH", Message: "Invalid punch payload"}
	EmployeeNotFound  = Definition{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found"}
	EmployeeNotActive = Definition{Code: "EMPLOYEE_NOT_ACTIVE", Message: "Employee is not active"}
)

// 去重与会话核算错误。
var (
	DuplicatePunch = Definition{Code: "DUPLICATE_PUNCH", Message: "Duplicate punch, please wait before trying again"}
	NoOpenSession  = Definition{Code: "NO_OPEN_SESSION", Message: "No open session to clock out of"}
)

// 手工补卡错误。
var (
	ManualRangeInvalid = Definition{Code: "MANUAL_RANGE_INVALID", Message: "Clock-out must be after clock-in"}
)

// 班次与考勤机错误。
var (
	ShiftNotFound    = Definition{Code: "SHIFT_NOT_FOUND", Message: "Shift not found"}
	TerminalNotFound = Definition{Code: "TERMINAL_NOT_FOUND", Message: "Terminal not found"}
)

// 限流错误。
var (
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, please try again later"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	InvalidPunch.Code:       InvalidPunch,
	EmployeeNotFound.Code:   EmployeeNotFound,
	EmployeeNotActive.Code:  EmployeeNotActive,
	DuplicatePunch.Code:     DuplicatePunch,
	NoOpenSession.Code:      NoOpenSession,
	ManualRangeInvalid.Code: ManualRangeInvalid,
	ShiftNotFound.Code:      ShiftNotFound,
	TerminalNotFound.Code:   TerminalNotFound,
	TooManyRequests.Code:    TooManyRequests,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// token 相关的底层错误，不走业务错误码。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrUserIDNotFound               = errors.New("user id not found in claims")
)
