package service

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"AreYouIn/internal/model"
	"AreYouIn/internal/repository"
	"AreYouIn/pkg/errors"
	"AreYouIn/pkg/snowflake"
)

// Normalizer 把三种输入形态（自助机/考勤机协议/手工补卡）统一成规范化 Punch
// 只做解析和员工解析，不落库也不做状态判断
type Normalizer struct {
	employeeRepo repository.EmployeeRepo
	now          func() time.Time
}

func NewNormalizer(employeeRepo repository.EmployeeRepo, now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{employeeRepo: employeeRepo, now: now}
}

// NormalizedPunch 规范化结果，附带解析到的员工，供下游免二次查询
type NormalizedPunch struct {
	Punch    *model.Punch
	Employee *model.Employee
}

// verifyModeTable 考勤机 VerifyMode 字段的固定映射
// 协议未覆盖的值一律 unknown
var verifyModeTable = map[int]model.VerifyMethod{
	0:  model.VerifyMethodPassword,
	1:  model.VerifyMethodFingerprint,
	2:  model.VerifyMethodCard,
	3:  model.VerifyMethodPasswordFinger,
	4:  model.VerifyMethodFingerCard,
	5:  model.VerifyMethodPasswordCard,
	6:  model.VerifyMethodPasswordAll,
	15: model.VerifyMethodFace,
}

// ResolveEmployee 员工解析：先按内部 ID，再按工号
func (n *Normalizer) ResolveEmployee(ctx context.Context, ref string) (*model.Employee, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.EmployeeNotFound
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		employee, err := n.employeeRepo.GetByID(ctx, id)
		if err == nil {
			return employee, nil
		}
		if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	employee, err := n.employeeRepo.GetByCode(ctx, ref)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.EmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

// NormalizeKiosk 自助机/手工形态
// eventType 大小写和连字符都容忍，缺失时间戳取服务端接收时间
func (n *Normalizer) NormalizeKiosk(ctx context.Context, employeeRef, eventType string, timestamp *time.Time, verifyMethod string, source model.PunchSource, terminalSN string) (*NormalizedPunch, error) {
	employee, err := n.ResolveEmployee(ctx, employeeRef)
	if err != nil {
		return nil, err
	}

	punchType, ok := normalizePunchType(eventType)
	if !ok {
		return nil, errors.InvalidPunch
	}

	receivedAt := n.now()
	ts := receivedAt
	if timestamp != nil {
		ts = *timestamp
	}

	method := normalizeVerifyMethod(verifyMethod)
	if source == model.PunchSourceManual {
		method = model.VerifyMethodManual
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, err
	}

	return &NormalizedPunch{
		Punch: &model.Punch{
			PublicID:     publicID,
			EmployeeID:   employee.ID,
			Type:         punchType,
			Source:       source,
			VerifyMethod: method,
			TerminalSN:   terminalSN,
			Timestamp:    ts,
			ReceivedAt:   receivedAt,
		},
		Employee: employee,
	}, nil
}

// NormalizeTerminalLine 解析考勤机 ATTLOG 的一行
// 格式：PIN\tTimestamp\tStatus\tVerifyMode\t...
// 字段数 < 2 或 PIN == "0" 视为坏行，返回 InvalidPunch，调用方跳过并计数
func (n *Normalizer) NormalizeTerminalLine(ctx context.Context, line, terminalSN string, loc *time.Location) (*NormalizedPunch, error) {
	fields := strings.Split(strings.TrimRight(line, "\r"), "\t")
	if len(fields) < 2 {
		return nil, errors.InvalidPunch
	}
	pin := strings.TrimSpace(fields[0])
	if pin == "" || pin == "0" {
		return nil, errors.InvalidPunch
	}

	ts, err := time.ParseInLocation("2006-01-02 15:04:05", strings.TrimSpace(fields[1]), loc)
	if err != nil {
		return nil, errors.InvalidPunch
	}

	// Status 1 为下班，其余数值设备协议没有进一步规范，一律按上班处理
	punchType := model.PunchTypeClockIn
	if len(fields) >= 3 && strings.TrimSpace(fields[2]) == "1" {
		punchType = model.PunchTypeClockOut
	}

	method := model.VerifyMethodUnknown
	if len(fields) >= 4 {
		if mode, err := strconv.Atoi(strings.TrimSpace(fields[3])); err == nil {
			if mapped, ok := verifyModeTable[mode]; ok {
				method = mapped
			}
		}
	}

	employee, err := n.employeeRepo.GetByCode(ctx, pin)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.EmployeeNotFound
		}
		return nil, err
	}

	publicID, err := snowflake.NextID()
	if err != nil {
		return nil, err
	}

	return &NormalizedPunch{
		Punch: &model.Punch{
			PublicID:     publicID,
			EmployeeID:   employee.ID,
			Type:         punchType,
			Source:       model.PunchSourceTerminal,
			VerifyMethod: method,
			TerminalSN:   terminalSN,
			Timestamp:    ts,
			ReceivedAt:   n.now(),
		},
		Employee: employee,
	}, nil
}

func normalizePunchType(eventType string) (model.PunchType, bool) {
	normalized := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(eventType), "-", "_"))
	switch normalized {
	case string(model.PunchTypeClockIn):
		return model.PunchTypeClockIn, true
	case string(model.PunchTypeClockOut):
		return model.PunchTypeClockOut, true
	default:
		return "", false
	}
}

func normalizeVerifyMethod(raw string) model.VerifyMethod {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(model.VerifyMethodFingerprint):
		return model.VerifyMethodFingerprint
	case string(model.VerifyMethodCard):
		return model.VerifyMethodCard
	case string(model.VerifyMethodPassword):
		return model.VerifyMethodPassword
	case string(model.VerifyMethodFace):
		return model.VerifyMethodFace
	case string(model.VerifyMethodManual):
		return model.VerifyMethodManual
	default:
		return model.VerifyMethodUnknown
	}
}
