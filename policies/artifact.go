package policies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/careloop/glucoach/types"
)

// ArtifactVersion is bumped whenever the serialized parameter layout
// changes incompatibly
const ArtifactVersion = 1

const (
	ArchQLearning = "qlearning"
	ArchSoftmax   = "softmax"
	ArchLinear    = "linear"
)

// Artifact is the versioned persisted form of a trained policy
type Artifact struct {
	Version      int             `json:"version"`
	Architecture string          `json:"architecture"`
	Params       json.RawMessage `json:"params"`
}

func writeArtifact(path, architecture string, params interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("serializing %s params: %w", architecture, err)
	}
	bs, err := json.Marshal(&Artifact{
		Version:      ArtifactVersion,
		Architecture: architecture,
		Params:       raw,
	})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}

// ReadArtifact loads and version-checks a policy artifact
func ReadArtifact(path string) (*Artifact, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.ArtifactError{Path: path, Reason: err.Error()}
	}
	artifact := &Artifact{}
	if err := json.Unmarshal(bs, artifact); err != nil {
		return nil, &types.ArtifactError{Path: path, Reason: fmt.Sprintf("corrupt artifact: %v", err)}
	}
	if artifact.Version != ArtifactVersion {
		return nil, &types.ArtifactError{Path: path, Expected: ArtifactVersion, Found: artifact.Version}
	}
	return artifact, nil
}

// LoadPolicy restores a trained policy from its artifact. The returned
// policy keeps its training hyperparameters at defaults; callers running
// deterministic evaluation should SetExploration(0).
func LoadPolicy(path string) (types.Policy, error) {
	artifact, err := ReadArtifact(path)
	if err != nil {
		return nil, err
	}
	switch artifact.Architecture {
	case ArchQLearning:
		table := make(map[string]map[string]float64)
		if err := json.Unmarshal(artifact.Params, &table); err != nil {
			return nil, &types.ArtifactError{Path: path, Reason: fmt.Sprintf("corrupt %s params: %v", artifact.Architecture, err)}
		}
		p := NewQLearning(0.1, 0.95, 0)
		p.qTable.SetTable(table)
		return p, nil
	case ArchSoftmax:
		table := make(map[string]map[string]float64)
		if err := json.Unmarshal(artifact.Params, &table); err != nil {
			return nil, &types.ArtifactError{Path: path, Reason: fmt.Sprintf("corrupt %s params: %v", artifact.Architecture, err)}
		}
		p := NewSoftmaxQ(0.1, 0.95, 0)
		p.qTable.SetTable(table)
		return p, nil
	case ArchLinear:
		params := &linearParams{}
		if err := json.Unmarshal(artifact.Params, params); err != nil {
			return nil, &types.ArtifactError{Path: path, Reason: fmt.Sprintf("corrupt %s params: %v", artifact.Architecture, err)}
		}
		p, err := newLinearFromParams(params)
		if err != nil {
			return nil, &types.ArtifactError{Path: path, Reason: err.Error()}
		}
		return p, nil
	}
	return nil, &types.ArtifactError{Path: path, Reason: fmt.Sprintf("unknown architecture %q", artifact.Architecture)}
}
