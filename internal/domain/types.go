package domain

// typeDescriptions cubre los 16 tipos.
var typeDescriptions = map[string]string{
	"INTJ": "Strategic perfectionist. Plans far ahead and moves deliberately toward long-term goals.",
	"INTP": "Analytical explorer. Takes ideas apart to understand how the world really works.",
	"ENTJ": "Decisive commander. Organizes people and resources around a clear objective.",
	"ENTP": "Quick-witted debater. Thrives on new angles, possibilities and a good argument.",
	"INFJ": "Quiet idealist. Reads people deeply and works patiently toward a meaningful vision.",
	"INFP": "Thoughtful mediator. Guided by personal values and a rich inner world.",
	"ENFJ": "Warm organizer. Naturally draws out the best in the people around them.",
	"ENFP": "Enthusiastic campaigner. Finds connections everywhere and pulls others along.",
	"ISTJ": "Reliable inspector. Values facts, order and commitments kept without fuss.",
	"ISFJ": "Devoted protector. Remembers the details that make other people feel cared for.",
	"ESTJ": "Practical executive. Gets things running and keeps them running on schedule.",
	"ESFJ": "Sociable provider. Keeps the group fed, organized and on speaking terms.",
	"ISTP": "Hands-on virtuoso. Calm under pressure, best understood through what they build.",
	"ISFP": "Gentle adventurer. Prefers showing who they are to explaining it.",
	"ESTP": "Energetic doer. Acts first, adjusts fast, and enjoys every minute of it.",
	"ESFP": "Spontaneous entertainer. Turns whatever is happening into something worth joining.",
}

// typeCompatibility lista los tres tipos mas afines por cada tipo.
var typeCompatibility = map[string][]string{
	"INTJ": {"ENFP", "INFP", "ENTP"},
	"INTP": {"ENTJ", "ENFJ", "INFJ"},
	"ENTJ": {"INTP", "INFP", "ENTP"},
	"ENTP": {"INFJ", "INTJ", "ENFJ"},
	"INFJ": {"ENTP", "ENFP", "INTJ"},
	"INFP": {"ENFJ", "ENTJ", "INTJ"},
	"ENFJ": {"INFP", "ISFP", "INTP"},
	"ENFP": {"INTJ", "INFJ", "ISTJ"},
	"ISTJ": {"ESFP", "ESTP", "ENFP"},
	"ISFJ": {"ESFP", "ESTP", "ENTP"},
	"ESTJ": {"ISFP", "ISTP", "INTP"},
	"ESFJ": {"ISFP", "ISTP", "INFP"},
	"ISTP": {"ESFJ", "ESTJ", "ENFJ"},
	"ISFP": {"ESFJ", "ESTJ", "ENFJ"},
	"ESTP": {"ISFJ", "ISTJ", "INFJ"},
	"ESFP": {"ISFJ", "ISTJ", "INFJ"},
}

// TypeDescription devuelve la descripcion del tipo, o vacio si no existe.
func TypeDescription(typeCode string) string {
	return typeDescriptions[typeCode]
}

// TopCompatibility devuelve hasta tres tipos compatibles para el codigo dado.
func TopCompatibility(typeCode string) []string {
	if len(typeCode) < 4 {
		return nil
	}
	matches := typeCompatibility[typeCode[:4]]
	if len(matches) > 3 {
		matches = matches[:3]
	}
	return matches
}
