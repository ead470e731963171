package cube

import domain "cubeengine/internal/core/domain/cube"

// compareScalars is the canonical value comparator: numeric vs
// numeric compares numerically, otherwise lexicographic comparison of string
// forms. Stable and total.
func compareScalars(a, b domain.Scalar) int {
	if a.IsNumber() && b.IsNumber() {
		switch {
		case a.Number() < b.Number():
			return -1
		case a.Number() > b.Number():
			return 1
		default:
			return 0
		}
	}
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
