// Package seed holds the locally seeded demo catalog. The catalog is
// the only data source of the module; nothing is fetched.
package seed

import (
	"context"

	"github.com/mkravets/shopcore/internal/models"
	"github.com/mkravets/shopcore/internal/repo"
)

func strptr(s string) *string { return &s }

func Categories() []models.Category {
	return []models.Category{
		{ID: "cat_1", Name: "Смартфоны", IconURL: strptr("https://source.unsplash.com/random/300x300/?smartphone"), Position: 1},
		{ID: "cat_2", Name: "Ноутбуки", IconURL: strptr("https://source.unsplash.com/random/300x300/?laptop"), Position: 2},
		{ID: "cat_3", Name: "Планшеты", IconURL: strptr("https://source.unsplash.com/random/300x300/?tablet"), Position: 3},
		{ID: "cat_4", Name: "Аксессуары", IconURL: strptr("https://source.unsplash.com/random/300x300/?accessories"), Position: 4},
		{ID: "cat_5", Name: "Наушники", IconURL: strptr("https://source.unsplash.com/random/300x300/?headphones"), Position: 5},
	}
}

func Products() []models.Product {
	return []models.Product{
		{
			ID:          "prod_1",
			Name:        "Смартфон Galaxy S21",
			Description: "Флагманский смартфон с мощным процессором и отличной камерой",
			Price:       59990,
			Category:    "cat_1",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?samsung"),
			Specifications: map[string]string{
				"display": "6.2\" Dynamic AMOLED",
				"memory":  "128 ГБ",
			},
		},
		{
			ID:          "prod_2",
			Name:        "iPhone 13 Pro",
			Description: "Мощный процессор A15 Bionic, улучшенная система камер",
			Price:       89990,
			Category:    "cat_1",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?iphone"),
			Specifications: map[string]string{
				"display": "6.1\" Super Retina XDR",
				"memory":  "256 ГБ",
			},
		},
		{
			ID:          "prod_3",
			Name:        "Xiaomi Mi 11",
			Description: "Флагманский смартфон с процессором Snapdragon 888",
			Price:       49990,
			Category:    "cat_1",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?xiaomi"),
			Specifications: map[string]string{
				"display": "6.81\" AMOLED",
				"memory":  "128 ГБ",
			},
		},
		{
			ID:          "prod_4",
			Name:        "MacBook Pro 16\"",
			Description: "Мощный ноутбук для профессионалов с чипом M1 Pro",
			Price:       189990,
			Category:    "cat_2",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?macbook"),
			Specifications: map[string]string{
				"cpu":    "Apple M1 Pro",
				"memory": "16 ГБ",
			},
		},
		{
			ID:          "prod_5",
			Name:        "Dell XPS 15",
			Description: "Премиальный ноутбук с InfinityEdge дисплеем",
			Price:       149990,
			Category:    "cat_2",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?dell"),
			Specifications: map[string]string{
				"cpu":    "Intel Core i7",
				"memory": "16 ГБ",
			},
		},
		{
			ID:          "prod_6",
			Name:        "iPad Pro 12.9\"",
			Description: "Самый мощный планшет с дисплеем Liquid Retina XDR",
			Price:       99990,
			Category:    "cat_3",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?ipad"),
			Specifications: map[string]string{
				"display": "12.9\" mini-LED",
				"memory":  "256 ГБ",
			},
		},
		{
			ID:          "prod_7",
			Name:        "Samsung Galaxy Tab S7+",
			Description: "Флагманский планшет с AMOLED дисплеем",
			Price:       79990,
			Category:    "cat_3",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?tablet"),
			Specifications: map[string]string{
				"display": "12.4\" Super AMOLED",
				"memory":  "128 ГБ",
			},
		},
		{
			ID:          "prod_8",
			Name:        "AirPods Pro",
			Description: "Беспроводные наушники с активным шумоподавлением",
			Price:       19990,
			Category:    "cat_5",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?airpods"),
			Specifications: map[string]string{
				"battery": "4.5 часа",
				"anc":     "да",
			},
		},
		{
			ID:          "prod_9",
			Name:        "Чехол для iPhone 13",
			Description: "Прозрачный защитный чехол из поликарбоната",
			Price:       1990,
			Category:    "cat_4",
			ImageURL:    strptr("https://source.unsplash.com/random/600x400/?phonecase"),
			Specifications: map[string]string{
				"material": "поликарбонат",
			},
		},
	}
}

// Apply replaces the stored catalog with the demo data.
func Apply(ctx context.Context, r *repo.GormRepo) error {
	return r.ReplaceCatalog(ctx, Categories(), Products())
}
