package dto

import "github.com/ecopoint-service/internal/domain"

// EcopointMessage - ответ для мессенджер-бота. On no match only Mensagem is set.
type EcopointMessage struct {
	Mensagem string             `json:"mensagem"`
	Location *domain.Coordinate `json:"location,omitempty"`
	Nome     string             `json:"nome,omitempty"`
}

// Found reports whether the message describes a point.
func (m EcopointMessage) Found() bool {
	return m.Location != nil
}

// NearbyPoint - элемент ранжированного списка
type NearbyPoint struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Address        string            `json:"address"`
	PostalCode     string            `json:"postal_code"`
	Phone          string            `json:"phone"`
	OperatingHours string            `json:"operating_hours"`
	Location       domain.Coordinate `json:"location"`
	AcceptedItems  []string          `json:"accepted_items"`
	DistanceMeters int64             `json:"distance_meters"`
}

// ImportIssue - причина пропуска записи при импорте
type ImportIssue struct {
	Index  int    `json:"index"`
	Name   string `json:"name,omitempty"`
	Reason string `json:"reason"`
}

// ImportSummary - итог импорта
type ImportSummary struct {
	Total    int           `json:"total"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Issues   []ImportIssue `json:"issues,omitempty"`
}

// HealthResponse - ответ health-check
type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
