// SPDX-License-Identifier: MIT

package grid

// Coord is a worker position on the torus.
type Coord struct {
	Row int // grid row, 0 ≤ Row < P
	Col int // grid column, 0 ≤ Col < P
}

// Grid is a P×P torus. The zero value is invalid; build one with New.
type Grid struct {
	p int // side length (> 0)
}

// Neighbors lists the four ranks a worker talks to during the shift loop.
type Neighbors struct {
	Left  int // receives our A-block on Shift-A
	Right int // sends us its A-block on Shift-A
	Up    int // receives our B-block on Shift-B
	Down  int // sends us its B-block on Shift-B
}

// Extent is the slice of the N×N matrix owned by one rank for the output C:
// rows [RowStart, RowStart+Size), cols [ColStart, ColStart+Size).
type Extent struct {
	Rank     int
	At       Coord
	RowStart int
	ColStart int
	Size     int
}

// FallbackReason names why Partition could not form a grid.
type FallbackReason string

// Fallback reasons reported by Partition.
const (
	ReasonNone         FallbackReason = ""
	ReasonEmptyMatrix  FallbackReason = "empty matrix"
	ReasonNoWorkers    FallbackReason = "no workers"
	ReasonSingleWorker FallbackReason = "grid side would be 1"
	ReasonNoDivisor    FallbackReason = "no grid side > 1 divides N"
)

// Plan is the outcome of Partition.
//   - Fallback=false: Grid and BlockSize describe a usable P×P decomposition.
//   - Fallback=true:  Grid/BlockSize are zero; run the sequential reference.
type Plan struct {
	N         int            // matrix side length
	Workers   int            // workers offered by the caller
	Grid      Grid           // chosen torus (valid only if !Fallback)
	BlockSize int            // N / P
	Fallback  bool           // true ⇒ use the sequential path
	Reason    FallbackReason // why Fallback is set
}
