package pkg

import (
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// MaxReasonLength 管理理由的最大字符数
const MaxReasonLength = 512

var reasonPolicy = bluemonday.StrictPolicy()

// CleanReason 去掉标签和首尾空白，按字符截断；结果为空时返回 nil
func CleanReason(reason string) *string {
	s := strings.TrimSpace(reasonPolicy.Sanitize(reason))
	if s == "" {
		return nil
	}
	if utf8.RuneCountInString(s) > MaxReasonLength {
		s = string([]rune(s)[:MaxReasonLength])
	}
	return &s
}
