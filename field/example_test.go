package field_test

import (
	"fmt"

	"github.com/cyclonewatch/shapmca/field"
)

// ExampleDivide demonstrates the non-finite masking rule: quotients that are
// NaN or ±Inf are deterministically replaced with 0.
func ExampleDivide() {
	grad, _ := field.NewStackFrom([]float64{1, 2, 3, 0}, 1, 2, 2)
	sal, _ := field.NewStackFrom([]float64{2, 0, 3, 0}, 1, 2, 2)

	pred, _ := field.Divide(grad, sal)
	fmt.Println(pred.Raw())
	// Output: [0.5 0 1 0]
}

// ExampleStack_Subsample coarsens a 4×4 grid with stride 2.
func ExampleStack_Subsample() {
	data := []float64{
		0, 1, 2, 3,
		10, 11, 12, 13,
		20, 21, 22, 23,
		30, 31, 32, 33,
	}
	s, _ := field.NewStackFrom(data, 1, 4, 4)

	coarse, _ := s.Subsample(2)
	fmt.Println(coarse.Rows(), coarse.Cols(), coarse.Raw())
	// Output: 2 2 [0 2 20 22]
}
