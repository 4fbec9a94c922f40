// Package cnf reads the DIMACS CNF instance and its auxiliary companion
// files (clause partitions, extra Y-clause constraints, and a previous
// run's MCSes) into a formula.Formula.
package cnf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/crillab/gophermus/formula"
	"github.com/pkg/errors"
)

// ParseDIMACS reads a DIMACS CNF stream, following the same relaxed
// whitespace and comment conventions as gophersat's own solver.ParseCNF:
// 'c' lines are comments, the 'p cnf nbvars nbclauses' header is required
// once, and each clause is terminated by a literal 0.
func ParseDIMACS(r io.Reader) (*formula.Formula, error) {
	br := bufio.NewReader(r)
	var (
		nbVars, nbClauses int
		haveHeader        bool
		clauses           [][]int
	)
	b, err := br.ReadByte()
	for err == nil {
		switch {
		case b == 'c':
			for err == nil && b != '\n' {
				b, err = br.ReadByte()
			}
		case b == 'p':
			nbVars, nbClauses, err = parseHeader(br)
			if err != nil {
				return nil, errors.Wrap(err, "cannot parse CNF header")
			}
			haveHeader = true
			clauses = make([][]int, 0, nbClauses)
		case isSpace(b):
			// blank line between clauses
		default:
			if !haveHeader {
				return nil, errors.New("clause found before 'p cnf' header")
			}
			lits := make([]int, 0, 3)
			for {
				val, e := readInt(&b, br)
				if e == io.EOF {
					if len(lits) != 0 {
						return nil, errors.New("unfinished clause at EOF")
					}
					err = io.EOF
					break
				}
				if e != nil {
					return nil, errors.Wrap(e, "cannot parse clause")
				}
				if val == 0 {
					clauses = append(clauses, lits)
					break
				}
				av := val
				if av < 0 {
					av = -av
				}
				if av > nbVars {
					return nil, errors.Errorf("literal %d exceeds declared %d variables", val, nbVars)
				}
				lits = append(lits, val)
			}
		}
		if err == nil {
			b, err = br.ReadByte()
		}
	}
	if err != io.EOF && err != nil {
		return nil, err
	}
	if !haveHeader {
		return nil, errors.New("missing 'p cnf' header")
	}
	return formula.NewUngrouped(clauses, nbVars), nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func readInt(b *byte, r *bufio.Reader) (res int, err error) {
	for err == nil && isSpace(*b) {
		*b, err = r.ReadByte()
	}
	if err == io.EOF {
		return res, io.EOF
	}
	if err != nil {
		return res, errors.Wrap(err, "could not read digit")
	}
	neg := 1
	if *b == '-' {
		neg = -1
		*b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "cannot read int")
		}
	}
	for err == nil {
		if *b < '0' || *b > '9' {
			return 0, errors.Errorf("cannot read int: %q is not a digit", *b)
		}
		res = 10*res + int(*b-'0')
		*b, err = r.ReadByte()
		if isSpace(*b) {
			break
		}
	}
	res *= neg
	return res, err
}

func parseHeader(r *bufio.Reader) (nbVars, nbClauses int, err error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, errors.Wrap(err, "cannot read header")
	}
	// br has already consumed the leading 'p'; fields here start with "cnf".
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0, errors.Errorf("invalid syntax %q in header", line)
	}
	nbVars, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Errorf("nbvars not an int: %q", fields[1])
	}
	nbClauses, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, errors.Errorf("nbclauses not an int: %q", fields[2])
	}
	return nbVars, nbClauses, nil
}
