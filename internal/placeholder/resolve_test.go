package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"git.home.luguber.info/inful/contractforge/internal/docmodel"
)

func TestResolve_NoTokens(t *testing.T) {
	data := docmodel.InputData{"a": "b"}

	assert.Equal(t, "plain text", Resolve("plain text", data))
	assert.Equal(t, "", Resolve("", data))
	assert.Equal(t, "single {brace}", Resolve("single {brace}", data))
}

func TestResolve_NestedPath(t *testing.T) {
	data := docmodel.InputData{"a": map[string]any{"b": "X"}}

	assert.Equal(t, "Value: X", Resolve("Value: {{a.b}}", data))
}

func TestResolve_MissingPathLeavesToken(t *testing.T) {
	assert.Equal(t, "{{missing.path}}", Resolve("{{missing.path}}", docmodel.InputData{}))

	// Traversal through a non-mapping fails the same way.
	data := docmodel.InputData{"a": "scalar"}
	assert.Equal(t, "{{a.b}}", Resolve("{{a.b}}", data))
}

func TestResolve_ScalarForms(t *testing.T) {
	data := docmodel.InputData{
		"count":   float64(3),
		"rate":    2.5,
		"total":   1500000.5,
		"active":  true,
		"company": "Acme",
	}

	assert.Equal(t, "3 items", Resolve("{{count}} items", data))
	assert.Equal(t, "rate 2.5", Resolve("rate {{rate}}", data))
	assert.Equal(t, "Total: 1500000.5", Resolve("Total: {{total}}", data),
		"large amounts render in plain decimal, never scientific notation")
	assert.Equal(t, "active=true", Resolve("active={{active}}", data))
	assert.Equal(t, "Acme", Resolve("{{company}}", data))
}

func TestResolve_NullAndNonScalarLeaveToken(t *testing.T) {
	data := docmodel.InputData{
		"nothing": nil,
		"nested":  map[string]any{"inner": "x"},
	}

	assert.Equal(t, "{{nothing}}", Resolve("{{nothing}}", data))
	assert.Equal(t, "{{nested}}", Resolve("{{nested}}", data))
	assert.Equal(t, "x", Resolve("{{nested.inner}}", data))
}

func TestResolve_MultipleTokens(t *testing.T) {
	data := docmodel.InputData{"a": "1", "b": "2"}

	assert.Equal(t, "1 and 2 and {{c}}", Resolve("{{a}} and {{b}} and {{c}}", data))
}

func TestResolve_RepeatedToken(t *testing.T) {
	data := docmodel.InputData{"name": "Acme"}

	assert.Equal(t, "Acme, Acme", Resolve("{{name}}, {{name}}", data))
}
