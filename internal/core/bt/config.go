package bt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Params carries per-node options from a config file to a factory.
type Params map[string]any

// String returns the string under key, or def when absent or mistyped.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Int returns the integer under key. YAML decodes whole numbers as int and
// JSON as float64; both come back.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Float returns the float under key, or def when absent or mistyped.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Bool returns the boolean under key, or def when absent or mistyped.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Duration returns the duration under key. Strings go through
// time.ParseDuration, bare numbers count as milliseconds.
func (p Params) Duration(key string, def time.Duration) time.Duration {
	switch v := p[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		return def
	case int:
		return time.Duration(v) * time.Millisecond
	case int64:
		return time.Duration(v) * time.Millisecond
	case float64:
		return time.Duration(v * float64(time.Millisecond))
	default:
		return def
	}
}

// Config describes a tree and its sensors as a graph of named nodes. Each
// node may be referenced exactly once so that no two parents ever share
// execution state.
type Config struct {
	Name    string                `json:"name,omitempty" yaml:"name,omitempty"`
	Root    string                `json:"root" yaml:"root"`
	Nodes   map[string]NodeConfig `json:"nodes" yaml:"nodes"`
	Sensors []SensorConfig        `json:"sensors,omitempty" yaml:"sensors,omitempty"`
}

// NodeConfig describes one node. Which fields apply depends on Type:
// composites list Children, decorators name a Child, leaves name a Leaf
// factory and conditions a Condition predicate.
type NodeConfig struct {
	Type      string   `json:"type" yaml:"type"`
	Children  []string `json:"children,omitempty" yaml:"children,omitempty"`
	Child     string   `json:"child,omitempty" yaml:"child,omitempty"`
	Leaf      string   `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Hook      string   `json:"hook,omitempty" yaml:"hook,omitempty"`
	KeepState bool     `json:"keep_state,omitempty" yaml:"keep_state,omitempty"`
	Params    Params   `json:"params,omitempty" yaml:"params,omitempty"`
}

// SensorConfig describes one sensor attached to the driver.
type SensorConfig struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Type   string `json:"type" yaml:"type"`
	Params Params `json:"params,omitempty" yaml:"params,omitempty"`
}

// LoadJSON reads a config from JSON.
func LoadJSON(r io.Reader) (*Config, error) {
	var cfg Config
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse json config: %w", err)
	}
	return &cfg, nil
}

// LoadYAML reads a config from YAML.
func LoadYAML(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read yaml config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the structural shape of the config before any factory
// runs: the root exists and every node carries the fields its type needs.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Root == "" {
		return errors.New("config has no root node")
	}
	if len(c.Nodes) == 0 {
		return errors.New("config has no nodes")
	}
	if _, ok := c.Nodes[c.Root]; !ok {
		return fmt.Errorf("unknown root node: %s", c.Root)
	}
	for name, nc := range c.Nodes {
		if err := nc.validate(name); err != nil {
			return err
		}
	}
	for i, sc := range c.Sensors {
		if sc.Type == "" {
			return fmt.Errorf("sensor %d has no type", i)
		}
	}
	return nil
}

func (nc NodeConfig) validate(name string) error {
	switch strings.ToLower(nc.Type) {
	case "sequence", "selector":
		if len(nc.Children) == 0 {
			return fmt.Errorf("%s %q has no children", nc.Type, name)
		}
	case "leaf":
		if nc.Leaf == "" {
			return fmt.Errorf("leaf %q names no leaf factory", name)
		}
	case "condition":
		if nc.Condition == "" {
			return fmt.Errorf("condition %q names no predicate", name)
		}
	case "negate", "delay":
		if nc.Child == "" {
			return fmt.Errorf("%s %q has no child", nc.Type, name)
		}
	case "until":
		if nc.Child == "" {
			return fmt.Errorf("until %q has no child", name)
		}
		if nc.Condition == "" {
			return fmt.Errorf("until %q names no predicate", name)
		}
	case "decorator":
		if nc.Child == "" {
			return fmt.Errorf("decorator %q has no child", name)
		}
		if nc.Hook == "" {
			return fmt.Errorf("decorator %q names no hook", name)
		}
	case "":
		return fmt.Errorf("node %q has no type", name)
	default:
		return fmt.Errorf("unsupported node type: %s", nc.Type)
	}
	return nil
}

// Build instantiates a finalized tree and its sensors. Factories come from
// the registry; node names in the config become node names in the tree.
func (c *Config) Build(reg *Registry) (*Tree, []Sensor, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	const (
		stateBuilding = 1
		stateDone     = 2
	)
	state := make(map[string]int, len(c.Nodes))

	var buildNode func(name string) (Node, error)
	buildNode = func(name string) (Node, error) {
		nc, ok := c.Nodes[name]
		if !ok {
			return nil, fmt.Errorf("unknown node: %s", name)
		}
		switch state[name] {
		case stateBuilding:
			return nil, fmt.Errorf("node cycle through %q", name)
		case stateDone:
			return nil, fmt.Errorf("node %q is referenced more than once", name)
		}
		state[name] = stateBuilding
		defer func() { state[name] = stateDone }()

		switch strings.ToLower(nc.Type) {
		case "sequence":
			seq := NewSequence(name)
			if nc.KeepState {
				seq.KeepState()
			}
			for _, childName := range nc.Children {
				child, err := buildNode(childName)
				if err != nil {
					return nil, err
				}
				seq.AddChild(child)
			}
			return seq, nil
		case "selector":
			sel := NewSelector(name)
			if nc.KeepState {
				sel.KeepState()
			}
			for _, childName := range nc.Children {
				child, err := buildNode(childName)
				if err != nil {
					return nil, err
				}
				sel.AddChild(child)
			}
			return sel, nil
		case "leaf":
			fn, err := reg.NewLeaf(nc.Leaf, nc.Params)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", name, err)
			}
			return NewLeaf(name, fn), nil
		case "condition":
			pred, err := reg.NewPred(nc.Condition, nc.Params)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", name, err)
			}
			return NewCondition(name, pred), nil
		case "negate":
			child, err := buildNode(nc.Child)
			if err != nil {
				return nil, err
			}
			return NewNegate(name).Bind(child), nil
		case "delay":
			child, err := buildNode(nc.Child)
			if err != nil {
				return nil, err
			}
			return NewDelay(name).Bind(child), nil
		case "until":
			pred, err := reg.NewPred(nc.Condition, nc.Params)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", name, err)
			}
			child, err := buildNode(nc.Child)
			if err != nil {
				return nil, err
			}
			return NewUntil(name, pred).Bind(child), nil
		case "decorator":
			hook, err := reg.NewHook(nc.Hook, nc.Params)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", name, err)
			}
			child, err := buildNode(nc.Child)
			if err != nil {
				return nil, err
			}
			return NewDecorator(name, hook).Bind(child), nil
		default:
			return nil, fmt.Errorf("unsupported node type: %s", nc.Type)
		}
	}

	root, err := buildNode(c.Root)
	if err != nil {
		return nil, nil, err
	}

	treeName := c.Name
	if treeName == "" {
		treeName = c.Root
	}
	tree, err := NewTree(treeName, root)
	if err != nil {
		return nil, nil, err
	}

	sensors := make([]Sensor, 0, len(c.Sensors))
	for _, sc := range c.Sensors {
		sensor, err := reg.NewSensor(sc.Type, sc.Params)
		if err != nil {
			return nil, nil, fmt.Errorf("sensor %q: %w", sc.Type, err)
		}
		sensors = append(sensors, sensor)
	}

	return tree, sensors, nil
}
