// Package dimacs reads CNF problems in DIMACS format, including the
// non-standard "c weights" comment line used to attach literal weights for
// weighted model counting. This is a boundary I/O concern, deliberately kept
// outside the compiler core (spec §1).
package dimacs

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// CNF is a parsed DIMACS instance. Clauses and variables are 1-indexed, as
// in the DIMACS format itself; a clause is a slice of signed literals with
// no trailing zero.
type CNF struct {
	NumVars int
	Clauses [][]int

	// Weights maps a signed literal to its non-negative weight. A literal
	// absent from this map has the default weight of 1.0.
	Weights map[int]float64
}

// Weight returns the weight of literal lit, defaulting to 1.0.
func (c *CNF) Weight(lit int) float64 {
	if w, ok := c.Weights[lit]; ok {
		return w
	}
	return 1.0
}

// Parse reads a DIMACS CNF instance from r.
func Parse(r io.Reader) (*CNF, error) {
	cnf := &CNF{Weights: make(map[int]float64)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	headerSeen := false
	expectedClauses := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "c weights"):
			if err := parseWeights(cnf, line); err != nil {
				return nil, errors.Wrap(err, "parsing weight comment")
			}
			continue
		case strings.HasPrefix(line, "c"):
			continue
		case strings.HasPrefix(line, "p"):
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[1] != "cnf" {
				return nil, errors.Errorf("malformed problem line: %q", line)
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, errors.Wrap(err, "parsing variable count")
			}
			m, err := strconv.Atoi(fields[3])
			if err != nil {
				return nil, errors.Wrap(err, "parsing clause count")
			}
			cnf.NumVars = n
			expectedClauses = m
			headerSeen = true
			continue
		}

		if !headerSeen {
			return nil, errors.New("clause encountered before problem line")
		}

		fields := strings.Fields(line)
		clause := make([]int, 0, len(fields))
		for _, f := range fields {
			lit, err := strconv.Atoi(f)
			if err != nil {
				return nil, errors.Wrapf(err, "parsing literal %q", f)
			}
			if lit == 0 {
				break
			}
			clause = append(clause, lit)
		}
		cnf.Clauses = append(cnf.Clauses, clause)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning dimacs input")
	}
	if expectedClauses != 0 && len(cnf.Clauses) != expectedClauses {
		return nil, errors.Errorf("expected %d clauses, found %d", expectedClauses, len(cnf.Clauses))
	}
	return cnf, nil
}

// parseWeights parses a "c weights PW_1 NW_1 ... PW_n NW_n" comment line.
func parseWeights(cnf *CNF, line string) error {
	fields := strings.Fields(line)
	// fields[0], fields[1] == "c", "weights"
	values := fields[2:]
	if len(values)%2 != 0 {
		return errors.Errorf("odd number of weight values in %q", line)
	}
	for i := 0; i*2 < len(values); i++ {
		varIndex := i + 1
		pw, err := strconv.ParseFloat(values[i*2], 64)
		if err != nil {
			return errors.Wrapf(err, "parsing positive weight for var %d", varIndex)
		}
		nw, err := strconv.ParseFloat(values[i*2+1], 64)
		if err != nil {
			return errors.Wrapf(err, "parsing negative weight for var %d", varIndex)
		}
		cnf.Weights[varIndex] = pw
		cnf.Weights[-varIndex] = nw
	}
	return nil
}
