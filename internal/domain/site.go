package domain

import "time"

type Site struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageURL"`
	CreatedAt   time.Time `json:"createdAt"`
	Version     int32     `json:"-"`
}

type Recommendation struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Score             float64   `json:"score"`
	Factors           []string  `json:"factors"`
	Notes             string    `json:"notes"`
	OptimizationRunID *int64    `json:"optimizationRunID"` // 手动创建的推荐没有关联的优化任务
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	Version           int32     `json:"-"`
}
