package rbtree

import (
	"math/rand"
	"testing"
)

func assertSome[K order, V comparable](t *testing.T, tree *RBTree[K, V], key K, value V) {
	v, ok := tree.Get(key)
	if !ok {
		t.Error("expected tree to have key", key)
		return
	}
	if v != value {
		t.Error("expected", value, "but got", v)
		return
	}
}

func assertNone[K order, V comparable](t *testing.T, tree *RBTree[K, V], key K) {
	v, ok := tree.Get(key)
	if ok {
		t.Error("expected no value but got", v)
		return
	}
}

func assertMin[K order, V comparable](t *testing.T, tree *RBTree[K, V], key K, value V) {
	k, v, ok := tree.Min()
	if !ok {
		t.Error("expected tree to have values")
	}
	if k != key || v != value {
		t.Error("expected key, value to be", key, value, "but got", k, v)
	}
}

func TestRBTree_Insert(t *testing.T) {
	tree := new(RBTree[int, int])
	tree.Set(1, 2)
	tree.Set(3, 4)
	tree.Set(5, 6)
	assertSome(t, tree, 1, 2)
	assertSome(t, tree, 3, 4)
	assertSome(t, tree, 5, 6)
}

func TestRBTree_Delete(t *testing.T) {
	tree := new(RBTree[int, int])
	tree.Set(1, 2)
	tree.Set(3, 4)
	tree.Set(5, 6)
	tree.Delete(3)
	tree.Delete(2)
	assertSome(t, tree, 1, 2)
	assertNone(t, tree, 3)
	assertSome(t, tree, 5, 6)
}

func TestRBTree_Min(t *testing.T) {
	tree := new(RBTree[int, int])
	tree.Set(1, 2)
	tree.Set(3, 4)
	tree.Set(5, 6)
	assertMin(t, tree, 1, 2)
	tree.Delete(3)
	tree.Delete(1)
	assertMin(t, tree, 5, 6)
}

func TestRBTree_Len(t *testing.T) {
	tree := new(RBTree[int, int])
	tree.Set(1, 2)
	tree.Set(3, 4)
	tree.Set(3, 5)
	if tree.Len() != 2 {
		t.Error("expected 2 entries but got", tree.Len())
	}
	tree.Delete(7)
	tree.Delete(1)
	if tree.Len() != 1 {
		t.Error("expected 1 entry but got", tree.Len())
	}
}

func TestRBTree_Range(t *testing.T) {
	tree := new(RBTree[uint64, string])
	tree.Set(5, "e")
	tree.Set(1, "a")
	tree.Set(3, "c")
	tree.Set(2, "b")

	var got string
	tree.Range(func(key uint64, value string) bool {
		got += value
		if key == 2 {
			tree.Delete(key)
		}
		return key < 3
	})
	if got != "abc" {
		t.Error("expected abc but got", got)
	}
	assertNone(t, tree, 2)
	assertMin(t, tree, 1, "a")
}

func TestRBTree_Stress(t *testing.T) {
	const n = 100000

	tree := new(RBTree[int, int])

	for i := 0; i < n; i++ {
		k := rand.Int()
		v := rand.Int()
		tree.Set(k, v)
		tree.Set(rand.Int(), rand.Int())
		tree.Delete(k)
	}

	if tree.Len() > n {
		t.Error("expected at most", n, "entries but got", tree.Len())
	}
}
