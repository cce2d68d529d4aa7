package dataset

import (
	"fmt"
	"sort"
)

// Stream names a field of a Batch.
type Stream int

const (
	FeatureStream Stream = iota
	LabelStream
)

func (s Stream) String() string {
	switch s {
	case FeatureStream:
		return FeaturesField
	case LabelStream:
		return LabelsField
	default:
		return fmt.Sprintf("Stream(%d)", int(s))
	}
}

// Role is the logical slot a stream feeds during training.
type Role int

const (
	RoleInput Role = iota
	RoleTarget
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleTarget:
		return "target"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// StreamMap binds each role to the stream that supplies it.
type StreamMap map[Role]Stream

// Autoencoding feeds the features to both the input and the target.
func Autoencoding() StreamMap {
	return StreamMap{RoleInput: FeatureStream, RoleTarget: FeatureStream}
}

// Bound holds the per-role data of one batch.
type Bound struct {
	Input  [][]float64
	Target [][]float64
	N      int
}

// Bind resolves the roles of m against b. It fails if a role is unmapped or
// its stream carries no data for some sample.
func (m StreamMap) Bind(b Batch) (Bound, error) {
	if b.Len() == 0 {
		return Bound{}, fmt.Errorf("bind: empty batch")
	}
	var out Bound
	for _, role := range []Role{RoleInput, RoleTarget} {
		stream, ok := m[role]
		if !ok {
			return Bound{}, fmt.Errorf("bind: no stream mapped to role %s", role)
		}
		data, err := b.stream(stream)
		if err != nil {
			return Bound{}, fmt.Errorf("bind %s: %w", role, err)
		}
		if role == RoleInput {
			out.Input = data
		} else {
			out.Target = data
		}
	}
	out.N = b.Len()
	return out, nil
}

// Roles lists the mapped roles in a stable order, for logging.
func (m StreamMap) Roles() []Role {
	roles := make([]Role, 0, len(m))
	for r := range m {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i] < roles[j] })
	return roles
}

func (b Batch) stream(s Stream) ([][]float64, error) {
	var data [][]float64
	switch s {
	case FeatureStream:
		data = b.Features
	case LabelStream:
		data = b.Labels
	default:
		return nil, fmt.Errorf("unknown stream %s", s)
	}
	if len(data) != b.Len() {
		return nil, fmt.Errorf("stream %s has %d rows for %d samples", s, len(data), b.Len())
	}
	for i, row := range data {
		if len(row) == 0 {
			return nil, fmt.Errorf("stream %s is empty for sample %d", s, i)
		}
	}
	return data, nil
}
