package vmath

// ClosestPointsOnLines returns the parametric distances t1, t2 along two
// infinite lines (p1 + t1*d1) and (p2 + t2*d2) at their closest approach,
// used by the grass shader's ray/stalk PCA test (§4.F.4). d1, d2 need not
// be normalized. ok is false for (near-)parallel lines, where the caller
// should fall back to treating the lines as non-intersecting.
func ClosestPointsOnLines(p1, d1, p2, d2 Vec3) (t1, t2 float64, ok bool) {
	r := p1.Sub(p2)
	a := d1.Dot(d1)
	e := d2.Dot(d2)
	f := d2.Dot(r)

	if a <= 1e-12 && e <= 1e-12 {
		return 0, 0, false
	}
	if a <= 1e-12 {
		return 0, f / e, true
	}
	c := d1.Dot(r)
	if e <= 1e-12 {
		return -c / a, 0, true
	}

	b := d1.Dot(d2)
	denom := a*e - b*b
	if denom < 1e-12 {
		return 0, 0, false
	}
	t1 = (b*f - c*e) / denom
	t2 = (a*f - b*c) / denom
	return t1, t2, true
}
