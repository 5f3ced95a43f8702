// Package offers содержит чистые функции сортировки и фильтрации
// результатов поиска. Сортировка стабильна и идемпотентна: повторное
// применение не меняет порядок, равные ключи сохраняют исходный порядок.
package offers

import (
	"sort"
	"strconv"
	"strings"

	"github.com/magabrotheeeer/auto-assistant-client/internal/models"
)

// Режимы сортировки предложений картографий.
const (
	SortDefault   = "default"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortRating    = "rating"
)

// PopularQueries подсказки поиска на странице картографий.
var PopularQueries = []string{
	"cartographie golf 7 gti",
	"reprogrammation bmw 320d",
	"stage 1 audi a3",
	"eco reprogrammation 308",
	"cartographie renault megane rs",
}

// ParsePrice выделяет число из строки цены свободного формата:
// "249€" -> 249, "19,99 €" -> 19.99. Запятая считается десятичным
// разделителем. Нечисловые строки дают 0.
func ParsePrice(price string) float64 {
	cleaned := strings.ReplaceAll(price, ",", ".")
	var b strings.Builder
	for _, r := range cleaned {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return value
}

// Sort возвращает отсортированную копию списка. Неизвестный режим
// (в том числе SortDefault) оставляет исходный порядок.
func Sort(list []models.MapOffer, mode string) []models.MapOffer {
	out := make([]models.MapOffer, len(list))
	copy(out, list)

	switch mode {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return ParsePrice(out[i].Price) < ParsePrice(out[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return ParsePrice(out[i].Price) > ParsePrice(out[j].Price)
		})
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	}
	return out
}

// FilterPriceRange оставляет предложения с ценой в заданной вилке.
// nil-граница означает отсутствие ограничения.
func FilterPriceRange(list []models.MapOffer, min, max *float64) []models.MapOffer {
	if min == nil && max == nil {
		return list
	}
	out := make([]models.MapOffer, 0, len(list))
	for _, offer := range list {
		price := ParsePrice(offer.Price)
		if min != nil && price < *min {
			continue
		}
		if max != nil && price > *max {
			continue
		}
		out = append(out, offer)
	}
	return out
}

// FilterBySource оставляет запчасти выбранного источника.
// Источник "all" или пустой возвращает список без изменений.
func FilterBySource(list []models.PartOffer, source string) []models.PartOffer {
	if source == "" || source == "all" {
		return list
	}
	out := make([]models.PartOffer, 0, len(list))
	for _, part := range list {
		if part.Source == source {
			out = append(out, part)
		}
	}
	return out
}

// AvailableSources возвращает список источников в порядке появления,
// с "all" первым элементом.
func AvailableSources(list []models.PartOffer) []string {
	sources := []string{"all"}
	seen := make(map[string]bool)
	for _, part := range list {
		if part.Source == "" || seen[part.Source] {
			continue
		}
		seen[part.Source] = true
		sources = append(sources, part.Source)
	}
	return sources
}

// SortPartsByPrice возвращает копию списка запчастей, отсортированную
// по цене. Сортировка стабильна.
func SortPartsByPrice(list []models.PartOffer, descending bool) []models.PartOffer {
	out := make([]models.PartOffer, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if descending {
			return out[i].Price > out[j].Price
		}
		return out[i].Price < out[j].Price
	})
	return out
}
