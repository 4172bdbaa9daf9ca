package topology

// CombineFidelity returns the effective fidelity of two independent noisy
// links composed into one two-hop link. Symmetric and total over [0,1]x[0,1].
func CombineFidelity(f1, f2 float64) float64 {
	return f1*f2 + (1-f1)*(1-f2)/3
}
