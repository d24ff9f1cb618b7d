package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelscout/modelscout/pkg/unit"
)

func TestNewModelCommand(t *testing.T) {
	root := newTestRoot(t)
	cmd := NewModelCommand(root)

	assert.NotNil(t, cmd)
	assert.Equal(t, "model", cmd.Use)

	subCommands := cmd.Commands()
	require.Len(t, subCommands, 1)
	assert.Equal(t, "profile", subCommands[0].Name())
}

func TestModelProfileCommand_Structure(t *testing.T) {
	root := newTestRoot(t)
	cmd := NewModelProfileCommand(root)

	assert.NotNil(t, cmd)
	assert.Equal(t, "profile <model-id>", cmd.Use)
	assert.NotNil(t, cmd.Args)
	assert.NotEmpty(t, cmd.Example)

	endpointsFlag := cmd.Flags().Lookup("endpoints")
	require.NotNil(t, endpointsFlag)
	assert.Equal(t, "false", endpointsFlag.DefValue)

	parametersFlag := cmd.Flags().Lookup("parameters")
	require.NotNil(t, parametersFlag)
}

func TestRunModelProfile_UnitNotRegistered(t *testing.T) {
	root, _ := newTestRootWithBuf(t)

	err := runModelProfile(context.Background(), root, "openai/gpt-4o", false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model profile failed")
}

func TestRunModelProfile_PassesInput(t *testing.T) {
	root, buf := newTestRootWithBuf(t)

	fake := &fakeProfileQuery{}
	require.NoError(t, root.Registry().RegisterQuery(fake))

	err := runModelProfile(context.Background(), root, "openai/gpt-4o", true, false)
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-4o", fake.lastInput["model_id"])
	assert.Equal(t, true, fake.lastInput["include_endpoints"])
	assert.Equal(t, false, fake.lastInput["include_parameters"])
	assert.Contains(t, buf.String(), "openai/gpt-4o")
}

type fakeProfileQuery struct {
	lastInput map[string]any
}

func (f *fakeProfileQuery) Name() string              { return "catalog.profile" }
func (f *fakeProfileQuery) Domain() string            { return "catalog" }
func (f *fakeProfileQuery) InputSchema() unit.Schema  { return unit.Schema{} }
func (f *fakeProfileQuery) OutputSchema() unit.Schema { return unit.Schema{} }
func (f *fakeProfileQuery) Description() string       { return "fake profile" }
func (f *fakeProfileQuery) Examples() []unit.Example  { return nil }
func (f *fakeProfileQuery) Execute(ctx context.Context, input any) (any, error) {
	f.lastInput, _ = input.(map[string]any)
	return map[string]any{"model": map[string]any{"id": "openai/gpt-4o"}}, nil
}
