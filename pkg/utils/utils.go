package utils

import (
	"github.com/jinzhu/copier"
)

func DeepCopy(dst interface{}, src interface{}) error {
	return copier.CopyWithOption(dst, src, copier.Option{
		DeepCopy: true,
	})
}

func FindStrInSlice(a []string, s string) int {
	for i, v := range a {
		if v == s {
			return i
		}
	}
	return -1
}

// UniqueStrings removes duplicates from a while keeping the order of first occurrence.
func UniqueStrings(a []string) []string {
	seen := make(map[string]bool, len(a))
	ret := make([]string, 0, len(a))
	for _, s := range a {
		if seen[s] {
			continue
		}
		seen[s] = true
		ret = append(ret, s)
	}
	return ret
}
