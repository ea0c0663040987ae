package config

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/locomotion/condition"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/tag"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type conditionDoc struct {
	Kind      string         `yaml:"kind"`
	Threshold float32        `yaml:"threshold"`
	Fallback  string         `yaml:"fallback"`
	All       []conditionDoc `yaml:"all"`
}

type gaitDoc struct {
	MaxSpeed            float32       `yaml:"max_speed"`
	MaxAcceleration     float32       `yaml:"max_acceleration"`
	BrakingDeceleration float32       `yaml:"braking_deceleration"`
	GroundFriction      float32       `yaml:"ground_friction"`
	JumpZPower          float32       `yaml:"jump_z_power"`
	AirControl          float32       `yaml:"air_control"`
	RotationInterpSpeed float32       `yaml:"rotation_interp_speed"`
	Condition           *conditionDoc `yaml:"condition"`
}

type stanceDoc struct {
	DefaultGait string        `yaml:"default_gait"`
	Gaits       yaml.Node     `yaml:"gaits"`
	Condition   *conditionDoc `yaml:"condition"`
}

type rotationModeDoc struct {
	DefaultStance string        `yaml:"default_stance"`
	Stances       yaml.Node     `yaml:"stances"`
	Condition     *conditionDoc `yaml:"condition"`
}

type locomotionModeDoc struct {
	Space               string        `yaml:"space"`
	DefaultRotationMode string        `yaml:"default_rotation_mode"`
	RotationModes       yaml.Node     `yaml:"rotation_modes"`
	Condition           *conditionDoc `yaml:"condition"`
}

type document struct {
	DefaultLocomotionMode string `yaml:"default_locomotion_mode"`
	DefaultRotationMode   string `yaml:"default_rotation_mode"`
	DefaultStance         string `yaml:"default_stance"`
	DefaultGait           string `yaml:"default_gait"`

	MovingSpeedThreshold                   float32 `yaml:"moving_speed_threshold"`
	InheritBaseRotationInVelocityDirection bool    `yaml:"inherit_base_rotation_in_velocity_direction"`
	RotateTowardsDesiredVelocity           bool    `yaml:"rotate_towards_desired_velocity"`
	NetworkSmoothing                       bool    `yaml:"network_smoothing"`
	ListenServerNetworkSmoothing           bool    `yaml:"listen_server_network_smoothing"`

	MovementModes       map[string]string `yaml:"movement_modes"`
	CustomMovementModes map[uint8]string  `yaml:"custom_movement_modes"`

	LocomotionModes yaml.Node `yaml:"locomotion_modes"`
}

// Default returns the built-in locomotion definition.
func Default() *Data {
	d, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Errorf("parsing embedded defaults: %w", err))
	}
	return d
}

// Load loads a locomotion definition from a YAML file. If path is empty, the built-in definition is
// returned.
func Load(path string) (*Data, error) {
	if path == "" {
		return Parse(defaultsYAML)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a locomotion definition. Flags absent from the document keep their
// default values.
func Parse(b []byte) (*Data, error) {
	doc := document{
		MovingSpeedThreshold:                   50,
		InheritBaseRotationInVelocityDirection: true,
		RotateTowardsDesiredVelocity:           true,
		NetworkSmoothing:                       true,
		ListenServerNetworkSmoothing:           true,
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("config: parsing: %w", err)
	}

	modes, err := decodeLevel(&doc.LocomotionModes, decodeLocomotionMode)
	if err != nil {
		return nil, fmt.Errorf("config: locomotion_modes: %w", err)
	}
	tree := &Tree{DefaultLocomotionMode: tag.Tag(doc.DefaultLocomotionMode), LocomotionModes: modes}
	if err := Validate(tree); err != nil {
		return nil, err
	}

	d := &Data{
		Tree:                                   tree,
		MovementModes:                          make(map[MovementMode]tag.Tag, len(doc.MovementModes)),
		CustomMovementModes:                    make(map[uint8]tag.Tag, len(doc.CustomMovementModes)),
		DefaultRotationMode:                    tag.Tag(doc.DefaultRotationMode),
		DefaultStance:                          tag.Tag(doc.DefaultStance),
		DefaultGait:                            tag.Tag(doc.DefaultGait),
		MovingSpeedThreshold:                   doc.MovingSpeedThreshold,
		InheritBaseRotationInVelocityDirection: doc.InheritBaseRotationInVelocityDirection,
		RotateTowardsDesiredVelocity:           doc.RotateTowardsDesiredVelocity,
		EnableNetworkSmoothing:                 doc.NetworkSmoothing,
		EnableListenServerNetworkSmoothing:     doc.ListenServerNetworkSmoothing,
	}
	for name, lm := range doc.MovementModes {
		mode, err := ParseMovementMode(name)
		if err != nil {
			return nil, err
		}
		if mode == MovementModeCustom {
			return nil, oerror.New("config: custom movement modes belong in custom_movement_modes")
		}
		d.MovementModes[mode] = tag.Tag(lm)
	}
	for index, lm := range doc.CustomMovementModes {
		d.CustomMovementModes[index] = tag.Tag(lm)
	}
	for mode, lm := range d.MovementModes {
		if _, ok := tree.LocomotionMode(lm); !ok {
			return nil, &Error{Path: "movement_modes > " + mode.String(), Err: ErrUnknownLocomotionMode}
		}
	}
	for index, lm := range d.CustomMovementModes {
		if _, ok := tree.LocomotionMode(lm); !ok {
			return nil, &Error{Path: fmt.Sprintf("custom_movement_modes > %d", index), Err: ErrUnknownLocomotionMode}
		}
	}
	return d, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// decodeLevel decodes a mapping of tag -> config while keeping the authored order.
func decodeLevel[V any](node *yaml.Node, decode func(*yaml.Node) (V, error)) (*orderedmap.OrderedMap[tag.Tag, V], error) {
	m := orderedmap.NewOrderedMap[tag.Tag, V]()
	node = resolveAlias(node)
	if node == nil || node.Kind == 0 {
		return m, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, oerror.New("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		v, err := decode(resolveAlias(node.Content[i+1]))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		m.Set(tag.Tag(key), v)
	}
	return m, nil
}

func decodeLocomotionMode(n *yaml.Node) (*LocomotionModeConfig, error) {
	var doc locomotionModeDoc
	if err := n.Decode(&doc); err != nil {
		return nil, err
	}
	space, err := ParseSpace(doc.Space)
	if err != nil {
		return nil, err
	}
	cond, err := doc.Condition.build()
	if err != nil {
		return nil, err
	}
	modes, err := decodeLevel(&doc.RotationModes, decodeRotationMode)
	if err != nil {
		return nil, fmt.Errorf("rotation_modes: %w", err)
	}
	return &LocomotionModeConfig{
		Space:               space,
		DefaultRotationMode: tag.Tag(doc.DefaultRotationMode),
		RotationModes:       modes,
		Condition:           cond,
	}, nil
}

func decodeRotationMode(n *yaml.Node) (*RotationModeConfig, error) {
	var doc rotationModeDoc
	if err := n.Decode(&doc); err != nil {
		return nil, err
	}
	cond, err := doc.Condition.build()
	if err != nil {
		return nil, err
	}
	stances, err := decodeLevel(&doc.Stances, decodeStance)
	if err != nil {
		return nil, fmt.Errorf("stances: %w", err)
	}
	return &RotationModeConfig{DefaultStance: tag.Tag(doc.DefaultStance), Stances: stances, Condition: cond}, nil
}

func decodeStance(n *yaml.Node) (*StanceConfig, error) {
	var doc stanceDoc
	if err := n.Decode(&doc); err != nil {
		return nil, err
	}
	cond, err := doc.Condition.build()
	if err != nil {
		return nil, err
	}
	gaits, err := decodeLevel(&doc.Gaits, decodeGait)
	if err != nil {
		return nil, fmt.Errorf("gaits: %w", err)
	}
	return &StanceConfig{DefaultGait: tag.Tag(doc.DefaultGait), Gaits: gaits, Condition: cond}, nil
}

func decodeGait(n *yaml.Node) (*GaitConfig, error) {
	doc := gaitDoc{GroundFriction: 1, JumpZPower: 400, AirControl: 1, RotationInterpSpeed: 16}
	if err := n.Decode(&doc); err != nil {
		return nil, err
	}
	cond, err := doc.Condition.build()
	if err != nil {
		return nil, err
	}
	return &GaitConfig{
		MaxSpeed:            doc.MaxSpeed,
		MaxAcceleration:     doc.MaxAcceleration,
		BrakingDeceleration: doc.BrakingDeceleration,
		GroundFriction:      doc.GroundFriction,
		JumpZPower:          doc.JumpZPower,
		AirControl:          doc.AirControl,
		RotationInterpSpeed: doc.RotationInterpSpeed,
		Condition:           cond,
	}, nil
}

func (d *conditionDoc) build() (*condition.Condition, error) {
	if d == nil {
		return nil, nil
	}
	kind, err := condition.ParseKind(d.Kind)
	if err != nil {
		return nil, err
	}
	c := &condition.Condition{Kind: kind, Threshold: d.Threshold, Fallback: tag.Tag(d.Fallback)}
	for i := range d.All {
		child, err := d.All[i].build()
		if err != nil {
			return nil, err
		}
		c.Children = append(c.Children, child)
	}
	return c, nil
}
