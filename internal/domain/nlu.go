package domain

// FragmentType enumera los tipos de fragmento que devuelve el NLU.
type FragmentType int

const (
	FragmentText FragmentType = iota
	FragmentCard
	FragmentQuickReplies
	FragmentImage
	FragmentCustomPayload
)

// Fragment es una unidad de una respuesta multiparte. Solo el campo que
// corresponde a Type viene poblado.
type Fragment struct {
	Type         FragmentType
	Text         string
	Card         *CardFragment
	QuickReplies *QuickRepliesFragment
	ImageURL     string
	Payload      map[string]any
}

type CardFragment struct {
	Title    string
	Subtitle string
	ImageURL string
	Buttons  []CardButton
}

type CardButton struct {
	Text     string
	Postback string
}

type QuickRepliesFragment struct {
	Title   string
	Replies []string
}

// ContextFrame es un estado de slot-filling con nombre.
type ContextFrame struct {
	Name       string
	Lifespan   int
	Parameters Params
}

// Params mapea nombre de slot a valor. Un valor vacio equivale a ausente.
type Params map[string]string

// Value devuelve el valor del slot o "" si no esta seteado.
func (p Params) Value(name string) string {
	if p == nil {
		return ""
	}
	return p[name]
}

// Has indica si el slot tiene un valor no vacio.
func (p Params) Has(name string) bool {
	return p.Value(name) != ""
}

// NLUResult es la respuesta estructurada del servicio NLU ya validada.
type NLUResult struct {
	FulfillmentText     string
	FulfillmentData     FulfillmentData
	FulfillmentMessages []Fragment
	Action              string
	Contexts            []ContextFrame
	Parameters          Params
	ResolvedQuery       string
}

// FulfillmentData contiene overrides especificos por plataforma.
type FulfillmentData struct {
	Facebook    string
	HasFacebook bool
}
