package repository

import (
	"sync"

	"AreYouIn/storage/database"
)

// 进程级默认实现，基于 storage/database 的全局连接
// service 单例从这里取，测试直接用构造函数注入假实现

var (
	defaultEmployeeRepo *GormEmployeeRepo
	defaultShiftRepo    *GormShiftRepo
	defaultPunchRepo    *GormPunchRepo
	defaultSessionRepo  *GormSessionRepo
	defaultTerminalRepo *GormTerminalRepo
	defaultOnce         sync.Once
)

func initDefaults() {
	defaultOnce.Do(func() {
		db := database.DB()
		defaultEmployeeRepo = NewGormEmployeeRepo(db)
		defaultShiftRepo = NewGormShiftRepo(db)
		defaultPunchRepo = NewGormPunchRepo(db)
		defaultSessionRepo = NewGormSessionRepo(db)
		defaultTerminalRepo = NewGormTerminalRepo(db)
	})
}

func DefaultEmployeeRepo() EmployeeRepo {
	initDefaults()
	return defaultEmployeeRepo
}

func DefaultShiftRepo() ShiftRepo {
	initDefaults()
	return defaultShiftRepo
}

func DefaultPunchRepo() PunchRepo {
	initDefaults()
	return defaultPunchRepo
}

func DefaultSessionRepo() SessionRepo {
	initDefaults()
	return defaultSessionRepo
}

func DefaultTerminalRepo() TerminalRepo {
	initDefaults()
	return defaultTerminalRepo
}
