package models

// GradeReport is one line of the grade listing.
type GradeReport struct {
	Email  string
	Grades []float32
	Mean   float32
}

// NewGradeReport computes the arithmetic mean of grades. grades must not be empty.
func NewGradeReport(email string, grades []float32) GradeReport {
	var sum float32
	for _, g := range grades {
		sum += g
	}
	return GradeReport{
		Email:  email,
		Grades: append([]float32(nil), grades...),
		Mean:   sum / float32(len(grades)),
	}
}
