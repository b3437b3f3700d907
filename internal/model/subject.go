package model

// Subject is a tutoring subject. The school subjects are fixed; mindfulness and
// general are virtual categories that route to non-academic personas.
type Subject string

const (
	SubjectMath      Subject = "math"
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
	SubjectBiology   Subject = "biology"
	SubjectEnglish   Subject = "english"
	SubjectHistory   Subject = "history"
	SubjectGeography Subject = "geography"

	SubjectMindfulness Subject = "mindfulness"
	SubjectGeneral     Subject = "general"
)

// SchoolSubjects lists the academic subjects in display order.
var SchoolSubjects = []Subject{
	SubjectMath,
	SubjectPhysics,
	SubjectChemistry,
	SubjectBiology,
	SubjectEnglish,
	SubjectHistory,
	SubjectGeography,
}

// IsSchool reports whether s is one of the academic subjects.
func (s Subject) IsSchool() bool {
	for _, v := range SchoolSubjects {
		if v == s {
			return true
		}
	}
	return false
}

// IsValid reports whether s is accepted anywhere a subject is expected.
func (s Subject) IsValid() bool {
	return s.IsSchool() || s == SubjectMindfulness || s == SubjectGeneral
}

// BotType identifies the persona that produced a bot response.
type BotType string

const (
	BotTypeMindfulness  BotType = "mindfulness_bot"
	BotTypeCentralBrain BotType = "central_brain"
)

// BotTypeFor maps a subject to its persona label.
func BotTypeFor(s Subject) BotType {
	switch {
	case s.IsSchool():
		return BotType(string(s) + "_bot")
	case s == SubjectMindfulness:
		return BotTypeMindfulness
	default:
		return BotTypeCentralBrain
	}
}
