package policies

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careloop/glucoach/types"
)

func TestQTableArtifactRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policies", "qtable.json")

	trained := NewQLearningSeeded(0.1, 0.95, 0, 7)
	trained.qTable.Set("s0", "move", 2.5)
	trained.qTable.Set("s0", "hold", -1.0)
	trained.qTable.Set("s1", "jump", 0.75)
	require.NoError(t, trained.Record(path))

	restored, err := LoadPolicy(path)
	require.NoError(t, err)
	q, ok := restored.(*QLearning)
	require.True(t, ok)
	assert.Equal(t, trained.qTable.Table(), q.qTable.Table())

	// the restored policy makes the same greedy choices
	restored.SetExploration(0)
	action, ok := restored.NextAction(0, &testState{id: 0}, testActions)
	require.True(t, ok)
	assert.Equal(t, "move", action.Hash())
}

func TestSoftmaxArtifactRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "softmax.json")

	trained := NewSoftmaxQSeeded(0.1, 0.95, 0.5, 7)
	trained.qTable.Set("s0", "jump", 4.0)
	require.NoError(t, trained.Record(path))

	restored, err := LoadPolicy(path)
	require.NoError(t, err)
	s, ok := restored.(*SoftmaxQ)
	require.True(t, ok)
	assert.Equal(t, trained.qTable.Table(), s.qTable.Table())
}

func TestLinearArtifactRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linear.json")
	space := &types.BoxSpace{Low: []float64{0, 0}, High: []float64{10, 1}}

	trained := NewLinearQSeeded(0.1, 0.9, 0, space, 7)
	state := &testState{id: 5}
	trace := types.NewTrace()
	trace.Append(0, state, testActions[1], result(6, 1.0, true))
	require.NoError(t, trained.UpdateEpisode(0, []*types.Trace{trace}))
	require.NoError(t, trained.Record(path))

	restored, err := LoadPolicy(path)
	require.NoError(t, err)
	l, ok := restored.(*LinearQ)
	require.True(t, ok)

	features := trained.features(state)
	assert.InDelta(t, trained.value(features, "move"), l.value(l.features(state), "move"), 1e-9)
}

func TestLoadPolicyMissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.json"))
	var artifactErr *types.ArtifactError
	require.True(t, errors.As(err, &artifactErr))
}

func TestLoadPolicyCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := LoadPolicy(path)
	var artifactErr *types.ArtifactError
	require.True(t, errors.As(err, &artifactErr))
	assert.Contains(t, artifactErr.Reason, "corrupt")
}

func TestLoadPolicyVersionMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stale.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"version":99,"architecture":"qlearning","params":{}}`), 0644))

	_, err := LoadPolicy(path)
	var artifactErr *types.ArtifactError
	require.True(t, errors.As(err, &artifactErr))
	assert.Equal(t, ArtifactVersion, artifactErr.Expected)
	assert.Equal(t, 99, artifactErr.Found)
}

func TestLoadPolicyUnknownArchitecture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unknown.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"version":1,"architecture":"transformer","params":{}}`), 0644))

	_, err := LoadPolicy(path)
	var artifactErr *types.ArtifactError
	require.True(t, errors.As(err, &artifactErr))
	assert.Contains(t, artifactErr.Reason, "transformer")
}

func TestLoadPolicyRejectsMalformedLinearWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "badlinear.json")
	require.NoError(t, os.WriteFile(path,
		[]byte(`{"version":1,"architecture":"linear","params":{"low":[0,0],"high":[10,1],"weights":{"move":[1.0]}}}`), 0644))

	_, err := LoadPolicy(path)
	var artifactErr *types.ArtifactError
	require.True(t, errors.As(err, &artifactErr))
}
