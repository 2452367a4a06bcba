// Package chart собирает данные для диаграмм обзора: подсчёт категорий сессий и цвета палитры.
package chart

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/xela07ax/authconsole/internal/domain"
)

// Темы палитры, которые использует страница обзора.
const (
	ThemeBrowsers = 1
	ThemeDevices  = 2
	ThemeOS       = 2
)

// PaletteColor — цвет слота палитры. Позиция 0 получает слот 1.
func PaletteColor(position, theme int) string {
	return fmt.Sprintf("hsl(var(--chart-%d-%d))", position+1, theme)
}

// BucketKey убирает все пробельные символы: "Mobile Safari" и "MobileSafari" попадают в одну корзину.
func BucketKey(label string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, label)
}

// Aggregate считает метки за один проход. Порядок корзин — порядок первого появления,
// цвет зависит только от позиции и темы.
func Aggregate(labels []string, theme int) []domain.CategoryCount {
	buckets := make([]domain.CategoryCount, 0)
	index := make(map[string]int, len(labels))

	for _, label := range labels {
		key := BucketKey(label)
		if i, ok := index[key]; ok {
			buckets[i].Count++
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, domain.CategoryCount{
			Name:     key,
			Count:    1,
			ColorRef: PaletteColor(len(buckets), theme),
		})
	}
	return buckets
}

// Total — сумма счётчиков всех корзин.
func Total(buckets []domain.CategoryCount) int {
	total := 0
	for _, b := range buckets {
		total += b.Count
	}
	return total
}

// DefaultActive выбирает корзину по имени, иначе первую. На пустом списке ok=false.
func DefaultActive(buckets []domain.CategoryCount, name string) (domain.CategoryCount, bool) {
	if len(buckets) == 0 {
		return domain.CategoryCount{}, false
	}
	for _, b := range buckets {
		if b.Name == name {
			return b, true
		}
	}
	return buckets[0], true
}
