package functions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCall(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", "Echoes its arguments", func(args map[string]any) map[string]any {
		return map[string]any{"output": args["message"]}
	})

	result, ok := r.Call("echo", map[string]any{"message": "hi"})
	require.True(t, ok)
	assert.Equal(t, "hi", result["output"])

	_, ok = r.Call("missing", nil)
	assert.False(t, ok)
}

func TestRegistryTools(t *testing.T) {
	r := NewRegistry()
	assert.Nil(t, r.Tools())

	r.Register("a", "first", func(map[string]any) map[string]any { return nil })
	r.Register("b", "second", func(map[string]any) map[string]any { return nil })

	tools := r.Tools()
	require.Len(t, tools, 1)
	decls, ok := tools[0]["function_declarations"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, decls, 2)
	assert.Equal(t, "a", decls[0]["name"])
	assert.Equal(t, "second", decls[1]["description"])
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	result, ok := r.Call("GetCompanyInformationsDocs", map[string]any{})
	require.True(t, ok)
	assert.Contains(t, result["output"], "NabooPay")
}
