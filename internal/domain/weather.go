package domain

// Weather es el resultado de la consulta de clima; nil significa sin pronostico.
type Weather struct {
	City        string
	Description string
	TempKelvin  float64
}
