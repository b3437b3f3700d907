package service

import "github.com/projectk/projectk-backend/internal/model"

// bankQuestion is a fixed fallback question tagged with its difficulty.
type bankQuestion struct {
	difficulty model.Difficulty
	question   model.PracticeQuestion
}

func bq(d model.Difficulty, prompt string, options []string, correct, explanation string) bankQuestion {
	return bankQuestion{
		difficulty: d,
		question: model.PracticeQuestion{
			Prompt:        prompt,
			Options:       options,
			CorrectAnswer: correct,
			Explanation:   explanation,
		},
	}
}

// questionBank holds the fallback questions per school subject. Mindfulness
// and general have none.
var questionBank = map[model.Subject][]bankQuestion{
	model.SubjectMath: {
		bq(model.DifficultyEasy, "What is 2 + 2?", []string{"3", "4", "5", "22"}, "4", "Adding two and two gives four."),
		bq(model.DifficultyEasy, "What is 7 × 8?", []string{"54", "56", "58", "64"}, "56", "7 × 8 = 56."),
		bq(model.DifficultyEasy, "What is the perimeter of a square with side 5?", []string{"10", "20", "25", "15"}, "20", "A square has four equal sides: 4 × 5 = 20."),
		bq(model.DifficultyMedium, "Solve for x: 2x + 5 = 15", []string{"5", "10", "7.5", "20"}, "5", "Subtract 5 from both sides to get 2x = 10, then divide by 2."),
		bq(model.DifficultyMedium, "What is the mean of 2, 4, 6 and 8?", []string{"4", "5", "6", "20"}, "5", "The sum is 20 and there are 4 numbers, so the mean is 5."),
		bq(model.DifficultyMedium, "What is the area of a triangle with base 6 and height 4?", []string{"10", "12", "24", "20"}, "12", "Area = ½ × base × height = ½ × 6 × 4 = 12."),
		bq(model.DifficultyHard, "What are the roots of x² - 5x + 6 = 0?", []string{"2 and 3", "-2 and -3", "1 and 6", "-1 and 6"}, "2 and 3", "The quadratic factors as (x - 2)(x - 3)."),
		bq(model.DifficultyHard, "What is sin(30°)?", []string{"0.5", "√3/2", "1", "√2/2"}, "0.5", "In a 30-60-90 triangle the side opposite 30° is half the hypotenuse."),
	},
	model.SubjectPhysics: {
		bq(model.DifficultyEasy, "What is the SI unit of force?", []string{"Joule", "Newton", "Watt", "Pascal"}, "Newton", "Force is measured in newtons (kg·m/s²)."),
		bq(model.DifficultyEasy, "Which quantity is a vector?", []string{"Speed", "Mass", "Velocity", "Temperature"}, "Velocity", "Velocity has both magnitude and direction."),
		bq(model.DifficultyMedium, "A car travels 100 m in 5 s. What is its average speed?", []string{"20 m/s", "500 m/s", "0.05 m/s", "25 m/s"}, "20 m/s", "Speed = distance / time = 100 / 5."),
		bq(model.DifficultyMedium, "What force accelerates a 2 kg mass at 3 m/s²?", []string{"5 N", "6 N", "1.5 N", "9 N"}, "6 N", "F = m × a = 2 × 3."),
		bq(model.DifficultyHard, "What is the kinetic energy of a 4 kg mass moving at 3 m/s?", []string{"12 J", "18 J", "36 J", "6 J"}, "18 J", "KE = ½ m v² = ½ × 4 × 9."),
	},
	model.SubjectChemistry: {
		bq(model.DifficultyEasy, "What is the chemical symbol for sodium?", []string{"S", "So", "Na", "Sd"}, "Na", "Sodium's symbol comes from its Latin name natrium."),
		bq(model.DifficultyEasy, "What is the pH of pure water at 25 °C?", []string{"0", "7", "14", "1"}, "7", "Pure water is neutral."),
		bq(model.DifficultyMedium, "How many protons does a carbon atom have?", []string{"4", "6", "12", "14"}, "6", "Carbon's atomic number is 6."),
		bq(model.DifficultyMedium, "Which type of bond shares electron pairs between atoms?", []string{"Ionic", "Covalent", "Metallic", "Hydrogen"}, "Covalent", "Covalent bonds form by sharing electrons."),
		bq(model.DifficultyHard, "What is the molar mass of H₂O?", []string{"16 g/mol", "18 g/mol", "20 g/mol", "10 g/mol"}, "18 g/mol", "2 × 1 + 16 = 18."),
	},
	model.SubjectBiology: {
		bq(model.DifficultyEasy, "What is the powerhouse of the cell?", []string{"Nucleus", "Ribosome", "Mitochondrion", "Golgi apparatus"}, "Mitochondrion", "Mitochondria produce most of the cell's ATP."),
		bq(model.DifficultyEasy, "Which gas do plants absorb for photosynthesis?", []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Hydrogen"}, "Carbon dioxide", "Plants take in CO₂ and release O₂."),
		bq(model.DifficultyMedium, "What molecule carries genetic information?", []string{"ATP", "DNA", "Glucose", "Lipid"}, "DNA", "DNA stores hereditary information."),
		bq(model.DifficultyMedium, "Which blood cells fight infection?", []string{"Red blood cells", "White blood cells", "Platelets", "Plasma"}, "White blood cells", "White blood cells are part of the immune system."),
		bq(model.DifficultyHard, "In a cross of two Aa parents, what fraction of offspring are aa?", []string{"1/2", "1/4", "3/4", "0"}, "1/4", "The Punnett square gives AA, Aa, Aa and aa."),
	},
	model.SubjectEnglish: {
		bq(model.DifficultyEasy, "Which word is a noun?", []string{"Run", "Happy", "Teacher", "Quickly"}, "Teacher", "A noun names a person, place or thing."),
		bq(model.DifficultyEasy, "What is the plural of 'child'?", []string{"Childs", "Children", "Childes", "Childrens"}, "Children", "'Child' has an irregular plural."),
		bq(model.DifficultyMedium, "Which sentence is in the past tense?", []string{"She walks home.", "She walked home.", "She will walk home.", "She is walking home."}, "She walked home.", "'Walked' is the simple past."),
		bq(model.DifficultyMedium, "What is a synonym for 'rapid'?", []string{"Slow", "Fast", "Late", "Calm"}, "Fast", "Rapid and fast both mean quick."),
		bq(model.DifficultyHard, "Which literary device is 'The wind whispered through the trees'?", []string{"Simile", "Personification", "Alliteration", "Hyperbole"}, "Personification", "The wind is given a human action."),
	},
	model.SubjectHistory: {
		bq(model.DifficultyEasy, "In which year did World War II end?", []string{"1918", "1939", "1945", "1950"}, "1945", "The war ended in 1945."),
		bq(model.DifficultyEasy, "Which civilization built the pyramids of Giza?", []string{"Romans", "Ancient Egyptians", "Greeks", "Mayans"}, "Ancient Egyptians", "They were built during Egypt's Old Kingdom."),
		bq(model.DifficultyMedium, "Who was the first President of the United States?", []string{"Abraham Lincoln", "George Washington", "Thomas Jefferson", "John Adams"}, "George Washington", "Washington took office in 1789."),
		bq(model.DifficultyMedium, "The Renaissance began in which country?", []string{"France", "England", "Italy", "Spain"}, "Italy", "It began in Italian city-states such as Florence."),
		bq(model.DifficultyHard, "Which event started World War I?", []string{"Invasion of Poland", "Assassination of Archduke Franz Ferdinand", "Sinking of the Lusitania", "Treaty of Versailles"}, "Assassination of Archduke Franz Ferdinand", "The 1914 assassination in Sarajevo triggered the war."),
	},
	model.SubjectGeography: {
		bq(model.DifficultyEasy, "What is the largest ocean on Earth?", []string{"Atlantic", "Indian", "Arctic", "Pacific"}, "Pacific", "The Pacific covers about a third of Earth's surface."),
		bq(model.DifficultyEasy, "Which continent is Egypt in?", []string{"Asia", "Africa", "Europe", "South America"}, "Africa", "Egypt is in north-east Africa."),
		bq(model.DifficultyMedium, "What is the longest river in the world by most measurements?", []string{"Amazon", "Nile", "Yangtze", "Mississippi"}, "Nile", "The Nile is about 6,650 km long."),
		bq(model.DifficultyMedium, "Lines of latitude measure distance from what?", []string{"The Prime Meridian", "The Equator", "The Tropic of Cancer", "The North Pole"}, "The Equator", "Latitude is measured north or south of the Equator."),
		bq(model.DifficultyHard, "What type of plate boundary forms the Mid-Atlantic Ridge?", []string{"Convergent", "Divergent", "Transform", "Subduction"}, "Divergent", "The plates move apart and new crust forms."),
	},
}

// bankQuestions returns up to count questions for subject, preferring the
// requested difficulty. It returns nil when the subject has no bank.
func bankQuestions(subject model.Subject, difficulty model.Difficulty, count int) []model.PracticeQuestion {
	bank := questionBank[subject]
	if len(bank) == 0 {
		return nil
	}

	out := make([]model.PracticeQuestion, 0, count)
	for _, q := range bank {
		if len(out) == count {
			return out
		}
		if q.difficulty == difficulty {
			out = append(out, q.question)
		}
	}
	for _, q := range bank {
		if len(out) == count {
			return out
		}
		if q.difficulty != difficulty {
			out = append(out, q.question)
		}
	}
	return out
}
