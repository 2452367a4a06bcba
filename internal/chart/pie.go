package chart

import (
	"fmt"
	"strings"

	"github.com/xela07ax/authconsole/internal/domain"
)

// Slice — сегмент круговой диаграммы с границами в процентах.
type Slice struct {
	domain.CategoryCount
	Percent float64
	From    float64
	To      float64
}

// Pie — модель представления для шаблона.
type Pie struct {
	Title  string
	Param  string // query-параметр выбора активного сегмента
	Slices []Slice
	Total  int
	Active domain.CategoryCount
	Empty  bool
}

// NewPie считает проценты. При нулевой сумме диаграмма помечается пустой, деления нет.
func NewPie(title, param string, buckets []domain.CategoryCount, active string) Pie {
	p := Pie{Title: title, Param: param, Total: Total(buckets)}

	sel, ok := DefaultActive(buckets, active)
	if !ok || p.Total == 0 {
		p.Empty = true
		return p
	}
	p.Active = sel

	var cursor float64
	for _, b := range buckets {
		pct := float64(b.Count) * 100 / float64(p.Total)
		p.Slices = append(p.Slices, Slice{CategoryCount: b, Percent: pct, From: cursor, To: cursor + pct})
		cursor += pct
	}
	return p
}

// Gradient — значение CSS conic-gradient для диаграммы.
func (p Pie) Gradient() string {
	if p.Empty {
		return "none"
	}
	parts := make([]string, 0, len(p.Slices))
	for _, s := range p.Slices {
		parts = append(parts, fmt.Sprintf("%s %.2f%% %.2f%%", s.ColorRef, s.From, s.To))
	}
	return "conic-gradient(" + strings.Join(parts, ", ") + ")"
}

// UserStatusBuckets и SessionStatusBuckets — донаты активные/неактивные пользователи и активные/отозванные сессии.
func UserStatusBuckets(o *domain.Overview) []domain.CategoryCount {
	return []domain.CategoryCount{
		{Name: "active", Count: o.ActiveUserCount, ColorRef: PaletteColor(0, 1)},
		{Name: "inactive", Count: o.InactiveUserCount, ColorRef: PaletteColor(1, 1)},
	}
}

func SessionStatusBuckets(o *domain.Overview) []domain.CategoryCount {
	return []domain.CategoryCount{
		{Name: "active", Count: o.ActiveSessionCount, ColorRef: PaletteColor(0, 1)},
		{Name: "revoked", Count: o.RevokedSessionCount, ColorRef: PaletteColor(1, 2)},
	}
}
