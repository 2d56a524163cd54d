package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and parses the roster file
func LoadConfig(filename string) (*Roster, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a roster document. JSON input is accepted as-is since it is a
// subset of YAML. Field presence and scalar types are checked on the node
// tree so a string where a number is expected is rejected instead of coerced.
func Parse(data []byte) (*Roster, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, configErr("", fmt.Errorf("%w: %w", ErrSyntax, err))
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, configErr("", ErrNotObject)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, configErr("", ErrNotObject)
	}

	roster := &Roster{}

	deptNodes, err := sequenceField(root, "departments", "departments")
	if err != nil {
		return nil, err
	}
	for i, n := range deptNodes {
		dept, err := parseDepartment(n, fmt.Sprintf("departments[%d]", i))
		if err != nil {
			return nil, err
		}
		roster.Departments = append(roster.Departments, dept)
	}

	clientNodes, err := sequenceField(root, "clients", "clients")
	if err != nil {
		return nil, err
	}
	for i, n := range clientNodes {
		client, err := parseClient(n, fmt.Sprintf("clients[%d]", i))
		if err != nil {
			return nil, err
		}
		roster.Clients = append(roster.Clients, client)
	}

	if err := Validate(roster); err != nil {
		return nil, err
	}

	return roster, nil
}

func parseDepartment(n *yaml.Node, path string) (Department, error) {
	if n.Kind != yaml.MappingNode {
		return Department{}, configErr(path, fmt.Errorf("%w: expected object", ErrWrongType))
	}

	var dept Department
	var err error
	if dept.Name, err = stringField(n, "name", path); err != nil {
		return Department{}, err
	}
	if dept.Employees, err = intField(n, "employees", path); err != nil {
		return Department{}, err
	}
	if dept.Employees < 0 {
		return Department{}, configErr(path+".employees", ErrNegativeValue)
	}
	return dept, nil
}

func parseClient(n *yaml.Node, path string) (Client, error) {
	if n.Kind != yaml.MappingNode {
		return Client{}, configErr(path, fmt.Errorf("%w: expected object", ErrWrongType))
	}

	var client Client
	var err error
	if client.Name, err = stringField(n, "name", path); err != nil {
		return Client{}, err
	}
	if client.Time, err = intField(n, "time", path); err != nil {
		return Client{}, err
	}
	if client.Time < 0 {
		return Client{}, configErr(path+".time", ErrNegativeValue)
	}
	if client.Priority, err = intField(n, "priority", path); err != nil {
		return Client{}, err
	}

	deps, err := sequenceField(n, "departments", path+".departments")
	if err != nil {
		return Client{}, err
	}
	client.Departments = make([]string, 0, len(deps))
	for j, d := range deps {
		name, err := scalarString(d, fmt.Sprintf("%s.departments[%d]", path, j))
		if err != nil {
			return Client{}, err
		}
		client.Departments = append(client.Departments, name)
	}
	return client, nil
}

// Validate checks the rules that span entries: unique department names,
// non-negative values and client references to known departments.
func Validate(r *Roster) error {
	if r == nil {
		return configErr("", ErrNotObject)
	}

	known := make(map[string]struct{}, len(r.Departments))
	for i, d := range r.Departments {
		if _, dup := known[d.Name]; dup {
			return configErr(fmt.Sprintf("departments[%d].name", i),
				fmt.Errorf("%w: %q", ErrDuplicateDepartment, d.Name))
		}
		if d.Employees < 0 {
			return configErr(fmt.Sprintf("departments[%d].employees", i), ErrNegativeValue)
		}
		known[d.Name] = struct{}{}
	}

	for i, c := range r.Clients {
		if c.Time < 0 {
			return configErr(fmt.Sprintf("clients[%d].time", i), ErrNegativeValue)
		}
		for _, name := range c.Departments {
			if _, ok := known[name]; !ok {
				return &ReferenceError{Client: c.Name, Department: name}
			}
		}
	}
	return nil
}

// lookup returns the value node for key in a mapping node
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func sequenceField(m *yaml.Node, key, path string) ([]*yaml.Node, error) {
	v := lookup(m, key)
	if v == nil {
		return nil, configErr(path, ErrMissingField)
	}
	if v.Kind != yaml.SequenceNode {
		return nil, configErr(path, fmt.Errorf("%w: expected array", ErrWrongType))
	}
	return v.Content, nil
}

func stringField(m *yaml.Node, key, path string) (string, error) {
	v := lookup(m, key)
	if v == nil {
		return "", configErr(path+"."+key, ErrMissingField)
	}
	return scalarString(v, path+"."+key)
}

func scalarString(v *yaml.Node, path string) (string, error) {
	if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
		return "", configErr(path, fmt.Errorf("%w: expected string", ErrWrongType))
	}
	return v.Value, nil
}

func intField(m *yaml.Node, key, path string) (int, error) {
	v := lookup(m, key)
	if v == nil {
		return 0, configErr(path+"."+key, ErrMissingField)
	}
	if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!int" {
		return 0, configErr(path+"."+key, fmt.Errorf("%w: expected integer", ErrWrongType))
	}
	var out int
	if err := v.Decode(&out); err != nil {
		return 0, configErr(path+"."+key, fmt.Errorf("%w: %v", ErrWrongType, err))
	}
	return out, nil
}
