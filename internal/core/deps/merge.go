package deps

// Merge folds the per-starter sets left to right into a single set.
// The first failing combination aborts the merge.
func Merge(sets []Set) (Set, error) {
	acc := NewSet()
	for _, next := range sets {
		merged, err := MergePair(acc, next)
		if err != nil {
			return nil, err
		}
		acc = merged
	}
	return acc, nil
}

// MergePair merges two sets. Names present on one side only are copied
// unchanged; names present on both sides are passed through Combine.
func MergePair(a, b Set) (Set, error) {
	intersection, symmetricDifference := partition(a, b)
	result := make(Set, len(intersection)+len(symmetricDifference))

	for _, name := range intersection {
		combined, err := Combine(name, a[name], b[name])
		if err != nil {
			return nil, err
		}
		result[name] = combined
	}

	for _, name := range symmetricDifference {
		if spec, ok := a[name]; ok {
			result[name] = spec.Clone()
			continue
		}
		result[name] = b[name].Clone()
	}

	return result, nil
}

// partition splits the names of a and b into those present in both and
// those present in exactly one, each in lexical order.
func partition(a, b Set) (intersection, symmetricDifference []string) {
	for _, name := range a.Names() {
		if _, ok := b[name]; ok {
			intersection = append(intersection, name)
		} else {
			symmetricDifference = append(symmetricDifference, name)
		}
	}
	for _, name := range b.Names() {
		if _, ok := a[name]; !ok {
			symmetricDifference = append(symmetricDifference, name)
		}
	}
	return intersection, symmetricDifference
}
