// Package lp is a dense primal simplex solver for the restricted master
// problems of the column-generation loop.
//
// It supports exactly what the master needs: minimize c'x over >= / <=
// rows with x >= 0, columns added one at a time, and per-row dual values
// on the optimal basis. Problems here are small (tens of rows, a growing
// pool of columns), so a Big-M tableau with a Bland fallback is plenty.
package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sense is a row's constraint direction.
type Sense int

const (
	GE Sense = iota // a'x >= rhs
	LE              // a'x <= rhs
)

// Status is the outcome of a solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ErrIterationLimit is returned when the simplex fails to terminate; it
// indicates a numerical problem, not a property of the model.
var ErrIterationLimit = errors.New("simplex iteration limit exceeded")

const (
	pivotTol = 1e-9
	optTol   = 1e-9
	feasTol  = 1e-7
)

// Problem is a minimize LP under construction. Rows first, then columns;
// column coefficients are sparse over row indices.
type Problem struct {
	rows   []Sense
	rhs    []float64
	cost   []float64
	coef   []map[int]float64
}

// NewProblem returns an empty problem.
func NewProblem() *Problem {
	return &Problem{}
}

// AddRow appends a constraint row and returns its index.
func (p *Problem) AddRow(sense Sense, rhs float64) int {
	p.rows = append(p.rows, sense)
	p.rhs = append(p.rhs, rhs)
	return len(p.rows) - 1
}

// AddColumn appends a variable with the given objective cost and sparse
// row coefficients, returning its index.
func (p *Problem) AddColumn(cost float64, coef map[int]float64) int {
	c := make(map[int]float64, len(coef))
	for r, v := range coef {
		if v != 0 {
			c[r] = v
		}
	}
	p.cost = append(p.cost, cost)
	p.coef = append(p.coef, c)
	return len(p.cost) - 1
}

// NumRows returns the current row count.
func (p *Problem) NumRows() int { return len(p.rows) }

// NumColumns returns the current column count.
func (p *Problem) NumColumns() int { return len(p.cost) }

// Solution is an optimal (or terminal) solve result.
type Solution struct {
	Status    Status
	Objective float64
	// X holds primal values for the problem's columns.
	X []float64
	// Duals holds one dual value per row, in the sign convention where a
	// column's reduced cost is cost - duals'coef (>= rows carry
	// non-negative duals at optimality, <= rows non-positive).
	Duals []float64
}

// Solve runs the primal simplex on the current rows and columns. The
// problem itself is not modified; Solve may be called again after adding
// more columns.
func (p *Problem) Solve() (*Solution, error) {
	m := len(p.rows)
	n := len(p.cost)
	if m == 0 || n == 0 {
		return &Solution{Status: StatusOptimal, X: make([]float64, n), Duals: make([]float64, m)}, nil
	}

	// Normalize to equality form with b >= 0. negated[i] records rows
	// flipped during normalization so their duals can be flipped back.
	negated := make([]bool, m)
	b := make([]float64, m)
	sense := make([]Sense, m)
	for i := range p.rows {
		b[i] = p.rhs[i]
		sense[i] = p.rows[i]
		if b[i] < 0 {
			b[i] = -b[i]
			negated[i] = true
			if sense[i] == GE {
				sense[i] = LE
			} else {
				sense[i] = GE
			}
		}
	}

	sign := func(i int) float64 {
		if negated[i] {
			return -1
		}
		return 1
	}

	// Column layout: structural | slack/surplus | artificial.
	// LE rows get a +1 slack (initially basic); GE rows get a -1 surplus
	// plus a +1 artificial (initially basic).
	total := n
	slackCol := make([]int, m)
	artCol := make([]int, m)
	for i := 0; i < m; i++ {
		slackCol[i] = total
		total++
	}
	for i := 0; i < m; i++ {
		if sense[i] == GE {
			artCol[i] = total
			total++
		} else {
			artCol[i] = -1
		}
	}

	// Big-M cost for artificials, scaled to dominate the data.
	maxAbs := 1.0
	for _, c := range p.cost {
		if a := math.Abs(c); a > maxAbs {
			maxAbs = a
		}
	}
	bigM := 1e7 * maxAbs

	tab := make([][]float64, m)
	cost := make([]float64, total)
	copy(cost, p.cost)
	for i := 0; i < m; i++ {
		tab[i] = make([]float64, total)
		for j := 0; j < n; j++ {
			tab[i][j] = sign(i) * p.coef[j][i]
		}
		if sense[i] == LE {
			tab[i][slackCol[i]] = 1
		} else {
			tab[i][slackCol[i]] = -1
			tab[i][artCol[i]] = 1
			cost[artCol[i]] = bigM
		}
	}

	basis := make([]int, m)
	for i := 0; i < m; i++ {
		if sense[i] == LE {
			basis[i] = slackCol[i]
		} else {
			basis[i] = artCol[i]
		}
	}

	maxIter := 200 * (m + total)
	if maxIter < 2000 {
		maxIter = 2000
	}
	blandAfter := 20 * (m + total)

	reduced := make([]float64, total)
	for iter := 0; iter < maxIter; iter++ {
		// Reduced costs r_j = c_j - c_B' T_j.
		for j := 0; j < total; j++ {
			r := cost[j]
			for i := 0; i < m; i++ {
				if t := tab[i][j]; t != 0 {
					r -= cost[basis[i]] * t
				}
			}
			reduced[j] = r
		}

		// Entering column: Dantzig early on, Bland once the iteration count
		// hints at cycling.
		enter := -1
		if iter < blandAfter {
			best := -optTol
			for j := 0; j < total; j++ {
				if reduced[j] < best {
					best = reduced[j]
					enter = j
				}
			}
		} else {
			for j := 0; j < total; j++ {
				if reduced[j] < -optTol {
					enter = j
					break
				}
			}
		}

		if enter < 0 {
			return p.finish(b, basis, negated, slackCol, artCol, sense, m, n)
		}

		// Ratio test; smallest row index wins ties (anti-cycling).
		leave := -1
		bestRatio := math.Inf(1)
		for i := 0; i < m; i++ {
			if tab[i][enter] > pivotTol {
				ratio := b[i] / tab[i][enter]
				if ratio < bestRatio-optTol {
					bestRatio = ratio
					leave = i
				}
			}
		}
		if leave < 0 {
			return &Solution{Status: StatusUnbounded}, nil
		}

		pivot(tab, b, leave, enter, m, total)
		basis[leave] = enter
	}

	return nil, ErrIterationLimit
}

func pivot(tab [][]float64, b []float64, row, col, m, total int) {
	pv := tab[row][col]
	for j := 0; j < total; j++ {
		tab[row][j] /= pv
	}
	b[row] /= pv
	for i := 0; i < m; i++ {
		if i == row {
			continue
		}
		f := tab[i][col]
		if f == 0 {
			continue
		}
		for j := 0; j < total; j++ {
			tab[i][j] -= f * tab[row][j]
		}
		b[i] -= f * b[row]
	}
}

// finish classifies the terminal basis, extracts primal values, and
// recovers duals by solving B'y = c_B on the original equality-form basis
// columns.
func (p *Problem) finish(b []float64, basis []int,
	negated []bool, slackCol, artCol []int, sense []Sense, m, n int) (*Solution, error) {

	// An artificial still basic above tolerance means the original rows
	// cannot be satisfied.
	for i := 0; i < m; i++ {
		if artCol[i] >= 0 && basis[i] == artCol[i] && b[i] > feasTol {
			return &Solution{Status: StatusInfeasible}, nil
		}
	}

	x := make([]float64, n)
	obj := 0.0
	for i := 0; i < m; i++ {
		if basis[i] < n {
			x[basis[i]] = b[i]
		}
	}
	for j := 0; j < n; j++ {
		obj += p.cost[j] * x[j]
	}

	// Rebuild the basis matrix from the untransformed equality-form columns
	// and solve B'y = c_B for the duals.
	bm := mat.NewDense(m, m, nil)
	cb := mat.NewVecDense(m, nil)
	sign := func(i int) float64 {
		if negated[i] {
			return -1
		}
		return 1
	}
	for k, col := range basis {
		if col < n {
			for i := 0; i < m; i++ {
				bm.Set(i, k, sign(i)*p.coef[col][i])
			}
			cb.SetVec(k, p.cost[col])
			continue
		}
		i := rowOfAux(slackCol, artCol, col)
		if col == slackCol[i] {
			if sense[i] == LE {
				bm.Set(i, k, 1)
			} else {
				bm.Set(i, k, -1)
			}
			cb.SetVec(k, 0)
		} else {
			// A zero-level artificial still in the basis marks a redundant
			// row; costing it at zero (not Big-M) pins that row's dual to 0
			// instead of poisoning the whole dual vector.
			bm.Set(i, k, 1)
			cb.SetVec(k, 0)
		}
	}

	var y mat.VecDense
	if err := y.SolveVec(bm.T(), cb); err != nil {
		return nil, fmt.Errorf("singular basis in dual solve: %w", err)
	}

	duals := make([]float64, m)
	for i := 0; i < m; i++ {
		d := y.AtVec(i)
		if negated[i] {
			d = -d
		}
		if d == 0 {
			d = 0 // normalize -0
		}
		duals[i] = d
	}

	return &Solution{Status: StatusOptimal, Objective: obj, X: x, Duals: duals}, nil
}

// rowOfAux maps a slack/surplus or artificial column index back to its row.
func rowOfAux(slackCol, artCol []int, col int) int {
	for i := range slackCol {
		if slackCol[i] == col || artCol[i] == col {
			return i
		}
	}
	return -1
}
