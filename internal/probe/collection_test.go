package probe

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCollection() *Collection {
	return &Collection{
		App: "shop",
		Classes: []*Class{
			{Name: "Web", Methods: []Method{
				{Name: "test_home", Fn: func(*T) {}},
				{Name: "helper", Fn: func(*T) {}},
				{Name: "TestCheckout", Fn: func(*T) {}},
			}},
			{Name: "Empty"},
		},
	}
}

func TestCollection_Resolve(t *testing.T) {
	c := sampleCollection()

	r := c.Resolve("Web", "")
	assert.Equal(t, ClassHandle, r.Kind)
	assert.Equal(t, "Web", r.Class.Name)

	r = c.Resolve("Web", "helper")
	assert.Equal(t, MethodHandle, r.Kind)
	assert.Equal(t, "helper", r.Method.Name)

	assert.Equal(t, NotFound, c.Resolve("Web", "nope").Kind)
	assert.Equal(t, NotFound, c.Resolve("Nope", "").Kind)

	var absent *Collection
	assert.Equal(t, NotFound, absent.Resolve("Web", "").Kind)
}

func TestLoader_LoadClassKeepsDeclarationOrder(t *testing.T) {
	c := sampleCollection()
	g := DefaultLoader.LoadClass("shop", c.Classes[0])
	assert.Equal(t, []string{"shop.Web.test_home", "shop.Web.TestCheckout"}, ids(g))
}

func TestLoader_Discovery(t *testing.T) {
	c := sampleCollection()
	assert.Equal(t, DefaultDiscovery, c.Discovery())

	g, err := DefaultLoader.LoadCollection(c)
	require.NoError(t, err)
	assert.Equal(t, 2, g.Count())

	custom := NewGroup("custom", &Func{Name: "only"})
	c.Suite = func() (*Group, error) { return custom, nil }
	assert.Equal(t, CustomSuite, c.Discovery())

	g, err = DefaultLoader.LoadCollection(c)
	require.NoError(t, err)
	assert.Same(t, custom, g)

	c.Suite = func() (*Group, error) { return nil, errors.New("factory broke") }
	_, err = DefaultLoader.LoadCollection(c)
	assert.EqualError(t, err, "factory broke")
}

func TestGroup_CountAndLeaves(t *testing.T) {
	g := NewGroup("root", &Func{Name: "a"}, NewGroup("n", &Func{Name: "b"}, NewGroup("m")), nil)
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, 2, g.Count())
	var got []string
	for _, l := range g.Leaves() {
		got = append(got, l.ID())
	}
	assert.Equal(t, []string{"a", "b"}, got)
}
