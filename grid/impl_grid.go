// SPDX-License-Identifier: MIT

// Package grid - torus arithmetic.
//
// Purpose:
//   - Map ranks to coordinates and back (rank = row*P + col).
//   - Provide cyclic neighbour lookups for the systolic shifts.
//
// Complexity quicksheet:
//   - every method is O(1).

package grid

import "fmt"

// New returns a p×p torus.
// Errors: ErrBadGrid when p <= 0.
func New(p int) (Grid, error) {
	if p <= 0 {
		return Grid{}, gridErrorf("New", ErrBadGrid)
	}

	return Grid{p: p}, nil
}

// P returns the side length.
func (g Grid) P() int { return g.p }

// Size returns the number of participating workers (P²).
func (g Grid) Size() int { return g.p * g.p }

// Valid reports whether g was built by New.
func (g Grid) Valid() bool { return g.p > 0 }

// Coord converts a linear rank into its (row, col) position.
// Errors: ErrBadRank when rank ∉ [0, P²).
func (g Grid) Coord(rank int) (Coord, error) {
	if rank < 0 || rank >= g.Size() {
		return Coord{}, gridErrorf(fmt.Sprintf("Coord(%d)", rank), ErrBadRank)
	}

	return Coord{Row: rank / g.p, Col: rank % g.p}, nil
}

// Rank converts a coordinate into its linear rank. Coordinates outside the
// torus are wrapped first, so Rank never fails on a valid grid.
func (g Grid) Rank(c Coord) int {
	c = g.Wrap(c)

	return c.Row*g.p + c.Col
}

// Contains reports whether c lies inside the torus without wrapping.
func (g Grid) Contains(c Coord) bool {
	return c.Row >= 0 && c.Row < g.p && c.Col >= 0 && c.Col < g.p
}

// Wrap reduces both components modulo P into [0, P).
func (g Grid) Wrap(c Coord) Coord {
	return Coord{Row: mod(c.Row, g.p), Col: mod(c.Col, g.p)}
}

// Left is (r, (c-1+P) mod P): the destination of our A-block on Shift-A.
func (g Grid) Left(c Coord) Coord { return g.Wrap(Coord{Row: c.Row, Col: c.Col - 1}) }

// Right is (r, (c+1) mod P): the source of our next A-block on Shift-A.
func (g Grid) Right(c Coord) Coord { return g.Wrap(Coord{Row: c.Row, Col: c.Col + 1}) }

// Up is ((r-1+P) mod P, c): the destination of our B-block on Shift-B.
func (g Grid) Up(c Coord) Coord { return g.Wrap(Coord{Row: c.Row - 1, Col: c.Col}) }

// Down is ((r+1) mod P, c): the source of our next B-block on Shift-B.
func (g Grid) Down(c Coord) Coord { return g.Wrap(Coord{Row: c.Row + 1, Col: c.Col}) }

// Neighbors returns the four shift partners of rank.
// Errors: ErrBadRank.
func (g Grid) Neighbors(rank int) (Neighbors, error) {
	c, err := g.Coord(rank)
	if err != nil {
		return Neighbors{}, err
	}

	return Neighbors{
		Left:  g.Rank(g.Left(c)),
		Right: g.Rank(g.Right(c)),
		Up:    g.Rank(g.Up(c)),
		Down:  g.Rank(g.Down(c)),
	}, nil
}

// SkewSources returns the block coordinates that worker c must hold after the
// initial alignment: A-block (r, (c+r) mod P) and B-block ((r+c) mod P, c).
func (g Grid) SkewSources(c Coord) (aBlock, bBlock Coord) {
	k := mod(c.Row+c.Col, g.p)

	return Coord{Row: c.Row, Col: k}, Coord{Row: k, Col: c.Col}
}

// String renders the grid as "P×P".
func (g Grid) String() string { return fmt.Sprintf("%d×%d", g.p, g.p) }

// mod is the non-negative remainder.
func mod(x, m int) int {
	r := x % m
	if r < 0 {
		r += m
	}

	return r
}
