package domain

import (
	"errors"
	"fmt"
)

// Phase separa las preguntas de la fase principal (type code) de las de
// subtipo (A/T).
type Phase string

const (
	PhaseMain    Phase = "main"
	PhaseSubtype Phase = "subtype"
)

// Question es una entrada inmutable del catalogo. En la fase principal cada
// opcion apunta a un trait; en la fase de subtipo cada opcion vale un escalar
// de acuerdo.
type Question struct {
	Text   string
	Phase  Phase
	Traits [4]string
	Values [4]float64
}

// ChoiceLabels son las etiquetas fijas A..D de cada pregunta.
var ChoiceLabels = [4]string{
	"Strongly disagree",
	"Somewhat disagree",
	"Somewhat agree",
	"Strongly agree",
}

var (
	ErrEmptyCatalog    = errors.New("catalog has no questions")
	ErrCatalogOrdering = errors.New("catalog main-phase questions must precede subtype-phase questions")
)

// Catalog holds the ordered question sequence and the phase counts derived
// from the phase tags, so the engine never hard-codes a numeric boundary.
type Catalog struct {
	questions    []Question
	mainCount    int
	subtypeCount int
}

// NewCatalog valida el orden de fases y deriva los contadores.
func NewCatalog(questions []Question) (*Catalog, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{questions: questions}
	seenSubtype := false
	for i, q := range questions {
		switch q.Phase {
		case PhaseMain:
			if seenSubtype {
				return nil, ErrCatalogOrdering
			}
			c.mainCount++
			for _, t := range q.Traits {
				if t == "" {
					return nil, fmt.Errorf("question %d: main-phase choice without trait", i)
				}
			}
		case PhaseSubtype:
			seenSubtype = true
			c.subtypeCount++
		default:
			return nil, fmt.Errorf("question %d: unknown phase %q", i, q.Phase)
		}
	}
	return c, nil
}

// MustCatalog panics on an invalid catalog; used for the built-in one.
func MustCatalog(questions []Question) *Catalog {
	c, err := NewCatalog(questions)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Len() int          { return len(c.questions) }
func (c *Catalog) MainCount() int    { return c.mainCount }
func (c *Catalog) SubtypeCount() int { return c.subtypeCount }

// Question devuelve la pregunta en la posicion dada.
func (c *Catalog) Question(index int) Question {
	return c.questions[index]
}

func mainQ(text string, traits [4]string) Question {
	return Question{Text: text, Phase: PhaseMain, Traits: traits}
}

func subtypeQ(text string) Question {
	return Question{Text: text, Phase: PhaseSubtype, Values: [4]float64{0.0, 0.3, 0.6, 0.9}}
}

// DefaultCatalog is the production questionnaire: 24 main questions (6 per
// trait pair) followed by 4 subtype questions. Choices always run from
// "Strongly disagree" to "Strongly agree", so a statement worded toward one
// trait lists the opposing trait on the disagree side.
func DefaultCatalog() *Catalog {
	return MustCatalog([]Question{
		// E / I
		mainQ("Talking with someone I just met drains my energy.", [4]string{"E", "E", "I", "I"}),
		mainQ("I enjoy spending time alone in a quiet place.", [4]string{"E", "E", "I", "I"}),
		mainQ("Listening comes more naturally to me than talking.", [4]string{"E", "E", "I", "I"}),
		mainQ("I rarely bring up a topic of conversation myself.", [4]string{"E", "E", "I", "I"}),
		mainQ("Being in a large group of people gives me energy.", [4]string{"I", "I", "E", "E"}),
		mainQ("I tend to think out loud rather than in my head.", [4]string{"I", "I", "E", "E"}),
		// S / N
		mainQ("I trust direct experience more than theories.", [4]string{"N", "N", "S", "S"}),
		mainQ("I notice small practical details that others overlook.", [4]string{"N", "N", "S", "S"}),
		mainQ("I often catch myself imagining distant future possibilities.", [4]string{"S", "S", "N", "N"}),
		mainQ("Abstract ideas excite me more than concrete facts.", [4]string{"S", "S", "N", "N"}),
		mainQ("I prefer step-by-step instructions over figuring things out.", [4]string{"N", "N", "S", "S"}),
		mainQ("I look for hidden meanings behind what people say.", [4]string{"S", "S", "N", "N"}),
		// T / F
		mainQ("When deciding, logic weighs more for me than feelings.", [4]string{"F", "F", "T", "T"}),
		mainQ("I find it easy to point out the flaws in an argument.", [4]string{"F", "F", "T", "T"}),
		mainQ("Keeping harmony matters more to me than being right.", [4]string{"T", "T", "F", "F"}),
		mainQ("Other people's moods strongly affect my own.", [4]string{"T", "T", "F", "F"}),
		mainQ("I stay objective even when a decision affects people close to me.", [4]string{"F", "F", "T", "T"}),
		mainQ("I would rather comfort someone than correct them.", [4]string{"T", "T", "F", "F"}),
		// J / P
		mainQ("I plan my day in advance and stick to the plan.", [4]string{"P", "P", "J", "J"}),
		mainQ("Unfinished tasks bother me until they are closed.", [4]string{"P", "P", "J", "J"}),
		mainQ("I like keeping my options open until the last moment.", [4]string{"J", "J", "P", "P"}),
		mainQ("Deadlines help me do my best work.", [4]string{"P", "P", "J", "J"}),
		mainQ("I improvise more than I prepare.", [4]string{"J", "J", "P", "P"}),
		mainQ("A settled routine makes me comfortable.", [4]string{"P", "P", "J", "J"}),
		// A / T
		subtypeQ("I am usually confident in the choices I make."),
		subtypeQ("I recover quickly after a setback and move on."),
		subtypeQ("I rarely second-guess a decision once it is made."),
		subtypeQ("Stressful situations do not easily shake my self-image."),
	})
}
