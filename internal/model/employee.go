package model

// EmployeeStatus 员工状态枚举
type EmployeeStatus string

const (
	EmployeeStatusActive    EmployeeStatus = "active"    // 在职
	EmployeeStatusInactive  EmployeeStatus = "inactive"  // 停用
	EmployeeStatusSuspended EmployeeStatus = "suspended" // 停薪留职
	EmployeeStatusResigned  EmployeeStatus = "resigned"  // 离职
)

// Employee 员工目录，考勤核心只读
// 员工的增删改由 HR 后台负责，这里只消费 resolve 结果
type Employee struct {
	BaseModel
	PublicID   int64          `gorm:"uniqueIndex;not null" json:"public_id"`
	Code       string         `gorm:"uniqueIndex;type:varchar(32);not null" json:"code"` // 工号，同时是考勤机 PIN
	Name       string         `gorm:"type:varchar(64);not null;default:''" json:"name"`
	Department string         `gorm:"type:varchar(64);not null;default:''" json:"department"`
	Status     EmployeeStatus `gorm:"type:varchar(16);not null;default:'active';index:idx_employees_status" json:"status"`
	ShiftID    *int64         `gorm:"index" json:"shift_id,omitempty"` // 未排班员工为空
}

// TableName 指定表名
func (Employee) TableName() string {
	return "employees"
}

// IsActive 只有在职员工的打卡才参与会话核算
func (e *Employee) IsActive() bool {
	return e.Status == EmployeeStatusActive
}
