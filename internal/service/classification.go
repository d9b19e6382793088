package service

import "mbti-bot/internal/domain"

// Subtype thresholds observed against the questionnaire's score ranges: main
// answers max out at 1.2 per question, subtype answers at 0.9.
const (
	mainAverageThreshold    = 0.725
	subtypeAverageThreshold = 0.70
)

// traitPairs lista los pares opuestos en el orden del codigo final. El primer
// trait de cada par gana los empates.
var traitPairs = [4][2]string{
	{domain.TraitExtraversion, domain.TraitIntroversion},
	{domain.TraitIntuition, domain.TraitSensing},
	{domain.TraitThinking, domain.TraitFeeling},
	{domain.TraitJudging, domain.TraitPerceiving},
}

// TypeCode derives the 4-letter type from accumulated trait scores. Pure:
// identical score maps always yield the identical code.
func TypeCode(scores domain.TraitScores) string {
	code := make([]byte, 0, 4)
	for _, pair := range traitPairs {
		if scores[pair[0]] >= scores[pair[1]] {
			code = append(code, pair[0][0])
		} else {
			code = append(code, pair[1][0])
		}
	}
	return string(code)
}

// SubtypeLabel derives the Assertive/Turbulent label from the phase totals.
// Either average reaching its threshold is enough for "A"; both thresholds
// are inclusive.
func SubtypeLabel(mainTotal, subtypeTotal float64, mainCount, subtypeCount int) string {
	if mainCount <= 0 || subtypeCount <= 0 {
		return "T"
	}
	mainAverage := mainTotal / float64(mainCount)
	subtypeAverage := subtypeTotal / float64(subtypeCount)
	if mainAverage >= mainAverageThreshold || subtypeAverage >= subtypeAverageThreshold {
		return "A"
	}
	return "T"
}

// SubtypeReason devuelve la glosa del subtipo para el reporte final.
func SubtypeReason(subtype string) string {
	if subtype == "A" {
		return "Assertive"
	}
	return "Turbulent"
}
