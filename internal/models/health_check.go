package models

import "time"

type HealthCheck struct {
	Status      string            `json:"status"`
	BatchStatus BatchStatus       `json:"batch_status"`
	Timestamp   time.Time         `json:"timestamp"`
	Services    map[string]string `json:"services"`
}
