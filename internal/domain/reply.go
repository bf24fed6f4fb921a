package domain

const (
	ButtonWebURL      = "web_url"
	ButtonPhoneNumber = "phone_number"
	ButtonPostback    = "postback"
)

// Button es un boton de plantilla estructurada.
type Button struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// QuickReplyOption es una opcion de respuesta rapida que se ofrece al usuario.
type QuickReplyOption struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

// TextOptions arma opciones de texto cuyo payload es igual al titulo.
func TextOptions(titles ...string) []QuickReplyOption {
	out := make([]QuickReplyOption, 0, len(titles))
	for _, t := range titles {
		out = append(out, QuickReplyOption{ContentType: "text", Title: t, Payload: t})
	}
	return out
}
