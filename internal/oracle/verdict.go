package oracle

import (
	"github.com/SairajMN/autocrowd/internal/config"
)

// Verdict 预言机对已提交里程碑的裁决
type Verdict string

const (
	VerdictApproved  Verdict = "approved"  // 批准，触发放款
	VerdictRejected  Verdict = "rejected"  // 拒绝
	VerdictUncertain Verdict = "uncertain" // 不确定，转入支持者投票
)

// ParseVerdict 解析裁决字符串
func ParseVerdict(s string) (Verdict, bool) {
	switch Verdict(s) {
	case VerdictApproved, VerdictRejected, VerdictUncertain:
		return Verdict(s), true
	default:
		return "", false
	}
}

// Translate 把验证服务的 approved/confidence 回报翻译为三态裁决。
// 置信度达到批准阈值且结论为通过才批准；结论为不通过或置信度低于
// 拒绝阈值则拒绝；其余情况不确定，交由支持者投票
func Translate(cfg config.OracleConfig, approved bool, confidence float64) Verdict {
	if !approved || confidence < cfg.RejectionThreshold {
		return VerdictRejected
	}
	if confidence >= cfg.ApprovalThreshold {
		return VerdictApproved
	}
	return VerdictUncertain
}
