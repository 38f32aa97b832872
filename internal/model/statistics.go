package model

import (
	"time"

	"github.com/google/uuid"
)

// DashboardResponse summarises the removals visible to one actor
type DashboardResponse struct {
	StatusCounts   []StatusCount   `json:"status_counts"`
	Total          int64           `json:"total"`
	Pending        int64           `json:"pending"`
	DueReturns     []RemovalDigest `json:"due_returns"`
	RecentActivity []RemovalDigest `json:"recent_activity"`
	GeneratedAt    time.Time       `json:"generated_at"`
}

// StatusCount is the number of removals sitting in one status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// RemovalDigest is the slim row shown in dashboard lists
type RemovalDigest struct {
	ID          uuid.UUID  `json:"id"`
	Status      string     `json:"status"`
	RemovalType string     `json:"removal_type"`
	Employee    string     `json:"employee,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
