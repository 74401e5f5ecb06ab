package collect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCollector struct {
	BaseCollector

	name       string
	collectErr error
	lines      []Line
}

func (f *fakeCollector) Name() string { return f.name }

func (f *fakeCollector) Collect(string) ([]Line, error) {
	if f.collectErr != nil {
		return nil, f.collectErr
	}

	return f.lines, nil
}

func TestBuilder_DuplicateName(t *testing.T) {
	_, err := NewBuilder().
		Register(&fakeCollector{name: "a"}).
		Register(&fakeCollector{name: "a"}).
		Build()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_Collect_FirstMatchWins(t *testing.T) {
	a := &fakeCollector{
		BaseCollector: BaseCollector{Extensions: []string{"txt"}},
		name:          "a",
		lines:         []Line{{Position: "1", Line: "from a"}},
	}
	b := &fakeCollector{
		BaseCollector: BaseCollector{Extensions: []string{"txt"}},
		name:          "b",
		lines:         []Line{{Position: "1", Line: "from b"}},
	}

	reg, err := NewBuilder().Register(a).Register(b).Build()
	require.NoError(t, err)

	doc, ok := reg.Collect(context.Background(), "file.txt")
	require.True(t, ok)
	assert.Equal(t, "a", doc.Collector)
}

func TestRegistry_Collect_FallsThroughOnError(t *testing.T) {
	failing := &fakeCollector{
		BaseCollector: BaseCollector{Extensions: []string{"txt"}},
		name:          "failing",
		collectErr:    assert.AnError,
	}
	ok2 := &fakeCollector{
		BaseCollector: BaseCollector{Extensions: []string{"txt"}},
		name:          "ok",
		lines:         []Line{{Position: "1", Line: "recovered"}},
	}

	reg, err := NewBuilder().Register(failing).Register(ok2).Build()
	require.NoError(t, err)

	doc, ok := reg.Collect(context.Background(), "file.txt")
	require.True(t, ok)
	assert.Equal(t, "ok", doc.Collector)
}

func TestRegistry_Collect_NoCollectorAccepts(t *testing.T) {
	reg, err := NewBuilder().
		Register(&fakeCollector{BaseCollector: BaseCollector{Extensions: []string{"pdf"}}, name: "pdf"}).
		Build()
	require.NoError(t, err)

	_, ok := reg.Collect(context.Background(), "file.txt")
	assert.False(t, ok)
}
