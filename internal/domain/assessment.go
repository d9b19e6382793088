package domain

import "time"

// Traits individuales que acumulan puntaje durante la fase principal.
const (
	TraitExtraversion = "E"
	TraitIntroversion = "I"
	TraitSensing      = "S"
	TraitIntuition    = "N"
	TraitThinking     = "T"
	TraitFeeling      = "F"
	TraitJudging      = "J"
	TraitPerceiving   = "P"
)

// TraitScores acumula el puntaje por trait de la fase principal.
type TraitScores map[string]float64

// NewTraitScores devuelve un mapa con los 8 traits en cero.
func NewTraitScores() TraitScores {
	return TraitScores{
		TraitExtraversion: 0, TraitIntroversion: 0,
		TraitSensing: 0, TraitIntuition: 0,
		TraitThinking: 0, TraitFeeling: 0,
		TraitJudging: 0, TraitPerceiving: 0,
	}
}

// Total suma todos los puntajes acumulados.
func (s TraitScores) Total() float64 {
	var total float64
	for _, v := range s {
		total += v
	}
	return total
}

// Clone copia el mapa para snapshots.
func (s TraitScores) Clone() TraitScores {
	out := make(TraitScores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Session is the ephemeral state of one in-progress assessment. It is never
// persisted; it travels inside the continuation token between answer steps.
type Session struct {
	ID            string      `json:"id,omitempty"`
	OwnerID       string      `json:"owner_id"`
	Username      string      `json:"username,omitempty"`
	Contact       string      `json:"contact,omitempty"`
	Index         int         `json:"index"`
	TraitScores   TraitScores `json:"scores"`
	SubtypeScores []float64   `json:"at_scores"`
}

// Result es la proyeccion final de una sesion completada: una fila por usuario.
type Result struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	TypeCode  string    `json:"type_code"`
	Subtype   string    `json:"subtype"`
	Timestamp time.Time `json:"timestamp"`
}

// FullCode devuelve el codigo completo estilo "INTJ-A".
func (r Result) FullCode() string {
	return r.TypeCode + "-" + r.Subtype
}

// HistoryEntry es una fila del historial acotado (maximo 5 por usuario).
type HistoryEntry struct {
	ID            int64       `json:"id"`
	UserID        string      `json:"user_id"`
	Username      string      `json:"username"`
	TypeCode      string      `json:"type_code"`
	Subtype       string      `json:"subtype"`
	TraitScores   TraitScores `json:"scores"`
	SubtypeScores []float64   `json:"at_scores"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Prompt is the next question rendered to the user, carrying the continuation
// token the transport must send back with the chosen answer.
type Prompt struct {
	Token    string    `json:"session_token"`
	Number   int       `json:"number"`
	Total    int       `json:"total"`
	Intro    string    `json:"intro,omitempty"`
	Text     string    `json:"text"`
	Choices  [4]string `json:"choices"`
	OwnerID  string    `json:"owner_id"`
	Username string    `json:"username,omitempty"`
}

// Report is the rendered final view: description, compatibility and the score
// breakdown the original bot attached to its result embed.
type Report struct {
	Result         Result    `json:"result"`
	Description    string    `json:"description"`
	TopMatches     []string  `json:"top_matches,omitempty"`
	Previous       *Result   `json:"previous,omitempty"`
	MainAverage    float64   `json:"main_average"`
	SubtypeAverage float64   `json:"subtype_average"`
	SubtypeReason  string    `json:"subtype_reason"`
	GeneratedAt    time.Time `json:"generated_at"`
}
