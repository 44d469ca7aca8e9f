package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter struct{ name string }

func TestServiceRegistry(t *testing.T) {
	r := NewServiceRegistry()

	require.NoError(t, r.Register("greeter", &greeter{name: "hi"}))
	require.NoError(t, r.Register("another", "plain value"))
	assert.Error(t, r.Register("greeter", &greeter{}))
	assert.Equal(t, []string{"another", "greeter"}, r.Names())

	g, err := GetFrom[*greeter](r, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "hi", g.name)

	_, err = GetFrom[*greeter](r, "another")
	assert.ErrorContains(t, err, "wrong type")

	r.Unregister("greeter")
	r.Unregister("greeter")
	_, err = GetFrom[*greeter](r, "greeter")
	assert.ErrorContains(t, err, "not found")
}

func TestGlobalRegistry(t *testing.T) {
	_, err := GetCatalogService()
	assert.Error(t, err)

	require.NoError(t, Register("scratch", 42))
	t.Cleanup(func() { Unregister("scratch") })

	assert.Contains(t, ListServices(), "scratch")
	n, err := GetService[int]("scratch")
	require.NoError(t, err)
	assert.Equal(t, 42, n)
}
