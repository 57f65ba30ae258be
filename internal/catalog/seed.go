package catalog

import "github.com/playperu/resultboard/internal/resultboard"

// Default returns the built-in demo catalog used when no CATALOG_FILE is set.
func Default() *Catalog {
	c, err := New(demoPrograms(), demoResults())
	if err != nil {
		panic("catalog: invalid demo data: " + err.Error())
	}
	return c
}

func demoPrograms() []resultboard.Program {
	return []resultboard.Program{
		{Key: "prog-100", ProgramName: "Dance Solo", Section: "Senior"},
		{Key: "prog-200", ProgramName: "Classical Vocal", Section: "Junior"},
		{Key: "prog-300", ProgramName: "Instrumental Violin", Section: "Open", Read: true},
	}
}

func demoResults() map[string][]resultboard.Result {
	return map[string][]resultboard.Result{
		"prog-100": {
			{Position: 1, Grade: "A", Name: "Alex Johnson", Team: "Team Orion", ChestNo: "C-101"},
			{Position: 2, Grade: "B", Name: "Bella Smith", Team: "Team Orion", ChestNo: "C-102"},
			{Position: 3, Grade: "B", Name: "Chris Lee", Team: "Team Orion", ChestNo: "C-103"},
		},
		"prog-200": {
			{Position: 1, Grade: "A", Name: "Divya Patel", Team: "Team Atlas", ChestNo: "C-201"},
			{Position: 2, Grade: "A", Name: "Ethan Clark", Team: "Team Atlas", ChestNo: "C-202"},
			{Position: 3, Grade: "C", Name: "Farah Khan", Team: "Team Atlas", ChestNo: "C-203"},
		},
		"prog-300": {},
	}
}
