package service

import (
	"time"

	"Lee_Forum/internal/config"
)

// Clock 所有写入的时间戳都从这里取，测试可替换
type Clock func() time.Time

func SystemClock() time.Time {
	return time.Now().UTC()
}

// Paging 列表接口统一的分页约束
type Paging struct {
	Default int
	Max     int
}

func NewPaging(cfg config.ModerationConfig) Paging {
	p := Paging{Default: cfg.DefaultPageSize, Max: cfg.MaxPageSize}
	if p.Default <= 0 {
		p.Default = 20
	}
	if p.Max < p.Default {
		p.Max = p.Default
	}
	return p
}

// Normalize limit 非法时取默认值，超出上限时截断；offset 不小于 0
func (p Paging) Normalize(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = p.Default
	}
	if limit > p.Max {
		limit = p.Max
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func ptr[T any](v T) *T {
	return &v
}
