package merkletrie

// LCS returns the pairs of a longest common subsequence of a and b, where
// two elements are equal when eq returns true. Pairs are returned in
// order.
func LCS(a, b []int, eq func(x, y int) bool) []Pair {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}

	// table[i][j] is the length of the LCS of a[i:] and b[j:]
	cols := len(b) + 1
	table := make([]int32, (len(a)+1)*cols)
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			switch {
			case eq(a[i], b[j]):
				table[i*cols+j] = table[(i+1)*cols+j+1] + 1
			case table[(i+1)*cols+j] >= table[i*cols+j+1]:
				table[i*cols+j] = table[(i+1)*cols+j]
			default:
				table[i*cols+j] = table[i*cols+j+1]
			}
		}
	}

	var pairs []Pair
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case eq(a[i], b[j]):
			pairs = append(pairs, Pair{Src: a[i], Dst: b[j]})
			i++
			j++
		case table[(i+1)*cols+j] >= table[i*cols+j+1]:
			i++
		default:
			j++
		}
	}

	return pairs
}
