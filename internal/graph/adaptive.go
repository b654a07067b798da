package graph

// adaptiveCost sums every adaptive-table entry whose category sequence
// matches a suffix of path's category sequence (spec §4.4). The scan
// tolerates interior repeats: a run of identical categories in the path
// collapses to a single slot of the pattern, so [text,image,image,audio]
// matches the pattern [text,image,audio].
func adaptiveCost(path Path, table []CategoryAdaptiveEntry) float64 {
	seq := path.categories()
	var total float64
	for _, e := range table {
		if matchesAdaptiveSuffix(seq, e.Categories) {
			total += e.Cost
		}
	}
	return total
}

func matchesAdaptiveSuffix(seq, pattern []string) bool {
	if len(pattern) == 0 {
		return true
	}
	i := len(seq) - 1
	j := len(pattern) - 1
	for i >= 0 && j >= 0 {
		if seq[i] != pattern[j] {
			return false
		}
		cur := seq[i]
		i--
		for i >= 0 && seq[i] == cur {
			i--
		}
		j--
	}
	return j < 0
}

// containsUnsafeTriple reports whether path contains a consecutive
// image→video→audio run of primary categories — the hard-coded safety
// sentinel of spec §4.4.
func containsUnsafeTriple(path Path) bool {
	seq := path.categories()
	for i := 0; i+2 < len(seq); i++ {
		if seq[i] == "image" && seq[i+1] == "video" && seq[i+2] == "audio" {
			return true
		}
	}
	return false
}
