package guard

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/clutz/diag"
)

func TestName(t *testing.T) {
	r := NewRegistry(nil)
	assert.Equal(t, "noStructuralTyping_ctor_func_Ctor", r.Name("ctor_func.Ctor"))
	assert.Equal(t, "noStructuralTyping_module$contents$override_Base", r.Name("module$contents$override_Base"))
	assert.Equal(t, "private noStructuralTyping_X: any;", r.Member("X"))
}

func TestNameIsStable(t *testing.T) {
	r := NewRegistry(nil)
	first := r.Name("a.B")
	assert.Equal(t, first, r.Name("a.B"))
}

func TestCollisionGetsSuffix(t *testing.T) {
	c := diag.NewCollector()
	r := NewRegistry(c)
	r.Assign([]string{"a_b.c", "a.b_c"})

	first := r.Name("a.b_c")
	second := r.Name("a_b.c")
	assert.Equal(t, "noStructuralTyping_a_b_c", first)
	assert.Equal(t, "noStructuralTyping_a_b_c_2", second)

	all := c.All()
	require.Len(t, all, 1)
	assert.Equal(t, diag.NominalCollision, all[0].Code)
	assert.Equal(t, diag.Info, all[0].Severity)
	assert.Equal(t, "a_b.c", all[0].Symbol)
}

func TestDistinctClassesDistinctGuards(t *testing.T) {
	r := NewRegistry(nil)
	names := []string{"a.X", "a_X", "a$X", "b.X", "a.X.Y", "a.X_Y", "a-X"}

	var wg sync.WaitGroup
	results := make([]string, len(names))
	for i, n := range names {
		wg.Add(1)
		go func(i int, n string) {
			defer wg.Done()
			results[i] = r.Name(n)
		}(i, n)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, g := range results {
		assert.False(t, seen[g], "duplicate guard %s", g)
		seen[g] = true
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "a_b_C", Sanitize("a.b.C"))
	assert.Equal(t, "path_to_file_js", Sanitize("path/to/file.js"))
	assert.True(t, IsGuard("noStructuralTyping_a"))
	assert.False(t, IsGuard("method"))
}
