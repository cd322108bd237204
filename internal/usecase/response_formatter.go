package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ecopoint-service/internal/domain"
	"github.com/ecopoint-service/internal/usecase/dto"
)

const matchTemplate = "Encontrei o seguinte ecoponto próximo de você:\n\n" +
	"*%s*\n\n" +
	"%s\nCep: %s\n\n" +
	"*%d metro(s) de você.*\n\n" +
	"Telefone: %s\n" +
	"Horário de Funcionamento: %s.\n\n" +
	"Itens aceitos: %s"

// ResponseFormatter превращает результат поиска в сообщение для бота. Без I/O.
type ResponseFormatter struct{}

func NewResponseFormatter() *ResponseFormatter {
	return &ResponseFormatter{}
}

// Format renders a match or the fixed apology for a no-match result.
func (f *ResponseFormatter) Format(result *domain.SearchResult) dto.EcopointMessage {
	if result == nil || !result.Found || result.Point == nil {
		radius := domain.DefaultSearchRadiusMeters
		if result != nil && result.RadiusMeters > 0 {
			radius = result.RadiusMeters
		}
		return dto.EcopointMessage{Mensagem: noMatchMessage(radius)}
	}

	p := result.Point
	location := p.Coordinate()
	return dto.EcopointMessage{
		Mensagem: fmt.Sprintf(matchTemplate,
			p.Name,
			p.Address,
			p.PostalCode,
			RoundMeters(result.DistanceMeters),
			p.Phone,
			p.OperatingHours,
			strings.Join(p.AcceptedItems, ", "),
		),
		Location: &location,
		Nome:     p.Name,
	}
}

// NearbyPoint maps a ranked result for the list endpoint.
func (f *ResponseFormatter) NearbyPoint(result domain.SearchResult) dto.NearbyPoint {
	p := result.Point
	return dto.NearbyPoint{
		ID:             p.ID,
		Name:           p.Name,
		Address:        p.Address,
		PostalCode:     p.PostalCode,
		Phone:          p.Phone,
		OperatingHours: p.OperatingHours,
		Location:       p.Coordinate(),
		AcceptedItems:  p.AcceptedItems,
		DistanceMeters: RoundMeters(result.DistanceMeters),
	}
}

// RoundMeters rounds half-up to whole meters.
func RoundMeters(d float64) int64 {
	return int64(math.Floor(d + 0.5))
}

func noMatchMessage(radiusMeters float64) string {
	km := strconv.FormatFloat(radiusMeters/1000, 'f', -1, 64)
	unit := "quilômetros"
	if km == "1" {
		unit = "quilômetro"
	}
	return fmt.Sprintf("Não encontrei nenhum ecoponto em um raio de %s %s da sua localização.",
		strings.ReplaceAll(km, ".", ","), unit)
}
