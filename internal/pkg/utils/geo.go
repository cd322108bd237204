package utils

const (
	// MinRadiusMeters / MaxRadiusMeters - допустимые границы радиуса для HTTP API
	MinRadiusMeters = 100.0
	MaxRadiusMeters = 50000.0
)

// ValidateRadius проверяет валидность радиуса в метрах (100 м - 50 км)
func ValidateRadius(radiusMeters float64) bool {
	return radiusMeters >= MinRadiusMeters && radiusMeters <= MaxRadiusMeters
}
