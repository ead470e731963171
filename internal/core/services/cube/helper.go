package cube

import (
	"strconv"
	"strings"

	domain "cubeengine/internal/core/domain/cube"
	apperrors "cubeengine/pkg/errors"
)

// parseHelper parses the textual-helper mini-grammar into a partial
// RawQuery. The structured payload always wins over this output; callers
// merge field-by-field (see normalizeQuery).
func parseHelper(src string) (domain.RawQuery, error) {
	var q domain.RawQuery
	for _, clause := range strings.Split(src, ";") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		keyword, rest := splitKeyword(clause)
		switch strings.ToUpper(keyword) {
		case "MEASURES":
			for _, m := range splitCSV(rest) {
				if m != "" {
					q.Measures = append(q.Measures, m)
				}
			}
		case "ROWS":
			axes, err := parseAxes(rest)
			if err != nil {
				return q, err
			}
			q.Rows = append(q.Rows, axes...)
		case "COLUMNS":
			axes, err := parseAxes(rest)
			if err != nil {
				return q, err
			}
			q.Columns = append(q.Columns, axes...)
		case "SLICE":
			f, err := parseSlice(rest)
			if err != nil {
				return q, err
			}
			q.Slices = append(q.Slices, f)
		case "DICE":
			f, err := parseDice(rest)
			if err != nil {
				return q, err
			}
			q.Dices = append(q.Dices, f)
		case "FILTER":
			f, err := parseFilter(rest)
			if err != nil {
				return q, err
			}
			q.Filters = append(q.Filters, f)
		case "DRILL":
			d, err := parseDrill(rest)
			if err != nil {
				return q, err
			}
			q.Drill = &d
		case "ROLLUP":
			r, err := parseRollup(rest)
			if err != nil {
				return q, err
			}
			q.Rollup = &r
		default:
			return q, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeMalformedClause), "")
		}
	}
	return q, nil
}

// splitKeyword splits "KEYWORD rest-of-clause" at the first space and trims
// the surrounding whitespace from the rest.
func splitKeyword(clause string) (keyword, rest string) {
	fields := strings.SplitN(clause, " ", 2)
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.TrimSpace(fields[1])
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		out = append(out, strings.TrimSpace(part))
	}
	return out
}

// parseAxes parses a comma-separated list of "dim.level" or bare "dim" tokens.
func parseAxes(s string) ([]domain.AxisSpec, error) {
	var axes []domain.AxisSpec
	for _, tok := range splitCSV(s) {
		if tok == "" {
			continue
		}
		dim, level := splitDimLevel(tok)
		axes = append(axes, domain.AxisSpec{Dimension: dim, Level: level})
	}
	return axes, nil
}

func splitDimLevel(tok string) (dim, level string) {
	if i := strings.IndexByte(tok, '.'); i >= 0 {
		return tok[:i], tok[i+1:]
	}
	return tok, ""
}

// parseScalarToken parses an unquoted token: numeric tokens become a numeric
// Scalar, everything else a string Scalar.
func parseScalarToken(tok string) domain.Scalar {
	tok = strings.TrimSpace(tok)
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return domain.NumberScalar(f)
	}
	return domain.StringScalar(tok)
}

// parseSlice parses "dim.level = scalar".
func parseSlice(s string) (domain.FilterSpec, error) {
	idx := strings.IndexByte(s, '=')
	if idx < 0 {
		return domain.FilterSpec{}, malformedClause()
	}
	dimLevel := strings.TrimSpace(s[:idx])
	value := strings.TrimSpace(s[idx+1:])
	dim, level := splitDimLevel(dimLevel)
	return domain.FilterSpec{
		Dimension: dim,
		Level:     level,
		Operator:  domain.OpEq,
		Value:     parseScalarToken(value),
	}, nil
}

// parseDice parses "dim.level IN (v1,v2,...)".
func parseDice(s string) (domain.FilterSpec, error) {
	upper := strings.ToUpper(s)
	inIdx := strings.Index(upper, " IN ")
	if inIdx < 0 {
		return domain.FilterSpec{}, malformedClause()
	}
	dimLevel := strings.TrimSpace(s[:inIdx])
	listPart := strings.TrimSpace(s[inIdx+4:])
	listPart = strings.TrimPrefix(listPart, "(")
	listPart = strings.TrimSuffix(listPart, ")")
	dim, level := splitDimLevel(dimLevel)
	var values []domain.Scalar
	for _, tok := range splitCSV(listPart) {
		if tok != "" {
			values = append(values, parseScalarToken(tok))
		}
	}
	return domain.FilterSpec{
		Dimension: dim,
		Level:     level,
		Operator:  domain.OpIn,
		Values:    values,
	}, nil
}

var filterOperators = []struct {
	token string
	op    domain.FilterOperator
}{
	{"!=", domain.OpNeq},
	{">=", domain.OpGte},
	{"<=", domain.OpLte},
	{"=", domain.OpEq},
	{">", domain.OpGt},
	{"<", domain.OpLt},
}

// parseFilter parses "dim.level OP scalar" with OP in {=,!=,>,>=,<,<=}.
// Longer tokens (!=, >=, <=) are tried before their single-character prefixes.
func parseFilter(s string) (domain.FilterSpec, error) {
	for _, fo := range filterOperators {
		if idx := strings.Index(s, fo.token); idx >= 0 {
			dimLevel := strings.TrimSpace(s[:idx])
			value := strings.TrimSpace(s[idx+len(fo.token):])
			dim, level := splitDimLevel(dimLevel)
			return domain.FilterSpec{
				Dimension: dim,
				Level:     level,
				Operator:  fo.op,
				Value:     parseScalarToken(value),
			}, nil
		}
	}
	return domain.FilterSpec{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeUnsupportedOperator), s)
}

// parseDrill parses "<dim> <from> -> <to> [PATH v1,v2,...]"; the arrow token
// may also be spelled "to".
func parseDrill(s string) (domain.DrillSpec, error) {
	pathKeyword := " PATH "
	var pathPart string
	if idx := strings.Index(strings.ToUpper(s), pathKeyword); idx >= 0 {
		pathPart = strings.TrimSpace(s[idx+len(pathKeyword):])
		s = strings.TrimSpace(s[:idx])
	}
	s = strings.ReplaceAll(s, "->", " -> ")
	fields := strings.Fields(s)
	var dim, from, to string
	switch {
	case len(fields) == 4 && (fields[2] == "->" || strings.EqualFold(fields[2], "to")):
		dim, from, to = fields[0], fields[1], fields[3]
	case len(fields) == 3:
		dim, from, to = fields[0], fields[1], fields[2]
	default:
		return domain.DrillSpec{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeMalformedDrill), "")
	}
	d := domain.DrillSpec{Dimension: dim, FromLevel: from, ToLevel: to}
	if pathPart != "" {
		for _, tok := range splitCSV(pathPart) {
			if tok != "" {
				d.Path = append(d.Path, parseScalarToken(tok))
			}
		}
	}
	return d, nil
}

// parseRollup parses "<dim> <level>".
func parseRollup(s string) (domain.RollupSpec, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return domain.RollupSpec{}, apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeMalformedRollup), "")
	}
	return domain.RollupSpec{Dimension: fields[0], Level: fields[1]}, nil
}

func malformedClause() error {
	return apperrors.NewBadRequestError(apperrors.GetErrorMessage(apperrors.CodeMalformedClause), "")
}
