package slices

func Index[T comparable](haystack []T, needle T) int {
	for i, v := range haystack {
		if needle == v {
			return i
		}
	}
	return -1
}

// Remove will remove the item from the slice, retaining the original order
func Remove[T comparable](slice []T, item T) []T {
	i := Index(slice, item)
	if i == -1 {
		return slice
	}
	return RemoveIndex(slice, i)
}

func RemoveIndex[T any](slice []T, idx int) []T {
	copy(slice[idx:], slice[idx+1:])
	slice[len(slice)-1] = *new(T)
	return slice[:len(slice)-1]
}
