package domain

// Question is a configured questionnaire entry. Type is a CallType value or
// CallTypeAll; Order feeds the legacy "pv{order}" response key.
type Question struct {
	ID      string
	Text    string
	Options []string
	Type    string
	Order   int
	StageID string
}

// AppliesTo reports whether the question belongs to the given call type.
func (q Question) AppliesTo(t CallType) bool {
	return q.Type == string(t) || q.Type == CallTypeAll
}

// ScoreMap maps questionnaire answers to the 0-2 ordinal scale used by the
// satisfaction index. Lookup is by the exact stored answer text.
var ScoreMap = map[string]int{
	"Ótimo": 2, "Ok": 1, "Precisa melhorar": 0,
	"Sim": 2, "Parcial": 1, "Não": 0,
	"No prazo": 2, "Pequeno atraso": 1, "Com problema": 0,
	"Atendeu": 2, "Não atendeu": 0,
	"Leve": 1, "Sim, teve dificuldades": 0,
	"Talvez": 1,
}

// StageConfig describes one satisfaction stage of the post-sale journey.
type StageConfig struct {
	Label  string
	Weight float64
	Color  string
}

// Stages maps stage ids to their reporting configuration.
var Stages = map[string]StageConfig{
	"atendimento": {Label: "Compra/Atendimento", Weight: 0.20, Color: "#2563eb"},
	"tecnico":     {Label: "Dimensionamento", Weight: 0.15, Color: "#7c3aed"},
	"logistica":   {Label: "Entrega/Execução", Weight: 0.20, Color: "#f59e0b"},
	"produto":     {Label: "Expectativas/Resultado", Weight: 0.25, Color: "#10b981"},
	"suporte":     {Label: "Uso/Manutenção", Weight: 0.10, Color: "#0ea5e9"},
	"marca":       {Label: "Recomendação", Weight: 0.10, Color: "#f43f5e"},
}
