package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-dnnf/compiler/internal/dimacs"
	"github.com/go-dnnf/compiler/internal/vtree"
)

// loadInstance parses the DIMACS file at inputPath and builds a vtree over
// it. orderArg is a comma-separated 1-indexed variable order ("3,1,2"); an
// empty orderArg falls back to the natural order 1..NumVars.
func loadInstance(inputPath, orderArg string) (*dimacs.CNF, *vtree.Node, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "opening %s", inputPath)
	}
	defer f.Close()

	cnf, err := dimacs.Parse(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parsing %s", inputPath)
	}

	order, err := parseOrder(orderArg, cnf.NumVars)
	if err != nil {
		return nil, nil, err
	}

	root, err := vtree.Build(cnf, order)
	if err != nil {
		return nil, nil, errors.Wrap(err, "building vtree")
	}

	return cnf, root, nil
}

func parseOrder(orderArg string, numVars int) ([]int, error) {
	if orderArg == "" {
		order := make([]int, numVars)
		for i := range order {
			order[i] = i + 1
		}
		return order, nil
	}

	fields := strings.Split(orderArg, ",")
	order := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.Wrapf(err, "parsing --order entry %q", f)
		}
		order = append(order, v)
	}
	return order, nil
}
