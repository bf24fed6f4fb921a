package domain

// Admin es el operador que consulta las postulaciones via API.
type Admin struct {
	Email string `json:"email"`
}
