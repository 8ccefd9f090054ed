package matrix_test

import (
	"fmt"

	"github.com/katalvlaran/cannon/matrix"
)

// ExampleDense_Block cuts the bottom-right tile of a 4×4 matrix.
func ExampleDense_Block() {
	m, _ := matrix.NewDense(4, 4)
	_ = m.Apply(func(i, j int, _ float64) float64 { return float64(4*i + j) })

	blk, _ := m.Block(2, 2, 2)
	fmt.Println(blk.Data)
	// Output:
	// [10 11 14 15]
}

func ExampleMul() {
	a, _ := matrix.NewDenseFrom(2, 2, []float64{1, 2, 3, 4})
	b, _ := matrix.NewDenseFrom(2, 2, []float64{5, 6, 7, 8})
	c, _ := matrix.Mul(a, b)
	fmt.Print(c)
	// Output:
	// [19, 22]
	// [43, 50]
}
