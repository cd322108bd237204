package dto

import "github.com/ecopoint-service/internal/domain"

// EcopointRequest - запрос ближайшего ecoponto (контракт /listaEcopontos).
// lat/lng приходят строкой или числом.
type EcopointRequest struct {
	Lat    domain.FlexFloat `json:"lat" swaggertype:"string" example:"-23.5505"`
	Lng    domain.FlexFloat `json:"lng" swaggertype:"string" example:"-46.6333"`
	Filtro string           `json:"filtro,omitempty" example:"papel, vidro"`
}

// Query builds the search query with the default radius.
func (r EcopointRequest) Query() domain.SearchQuery {
	return domain.NewSearchQuery(
		domain.CoordinateFrom(r.Lat, r.Lng),
		domain.ParseCategoryFilter(r.Filtro),
	)
}

// NearbyRequest - запрос ранжированного списка пунктов
type NearbyRequest struct {
	Lat          domain.FlexFloat `json:"lat" swaggertype:"string" example:"-23.5505"`
	Lng          domain.FlexFloat `json:"lng" swaggertype:"string" example:"-46.6333"`
	Filtro       string           `json:"filtro,omitempty" example:"eletrônico"`
	RadiusMeters float64          `json:"radius_meters,omitempty" example:"5000"`
	Limit        int              `json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"10"`
}

// Query builds the search query; zero radius and limit fall back to defaults.
func (r NearbyRequest) Query() domain.SearchQuery {
	q := domain.NewSearchQuery(
		domain.CoordinateFrom(r.Lat, r.Lng),
		domain.ParseCategoryFilter(r.Filtro),
	)
	if r.RadiusMeters > 0 {
		q.RadiusMeters = r.RadiusMeters
	}
	q.Limit = r.Limit
	return q
}

// ImportRecord - запись файла pontosColeta.json
type ImportRecord struct {
	ID                   string           `json:"id,omitempty"`
	Nome                 string           `json:"nome" validate:"required"`
	Endereco             string           `json:"endereco"`
	Cep                  string           `json:"cep"`
	Telefone             string           `json:"telefone"`
	HorarioFuncionamento string           `json:"horario_funcionamento"`
	Latitude             domain.FlexFloat `json:"latitude"`
	Longitude            domain.FlexFloat `json:"longitude"`
	ItensRecebidos       []string         `json:"itens_recebidos"`
}
