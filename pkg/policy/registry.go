package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy lists the tools an agent is permitted to use.
type Policy struct {
	Agent string   `yaml:"-"`
	Tools []string `yaml:"tools"`
}

// Allows reports whether tool is listed for this agent. "*" allows every tool.
func (p Policy) Allows(tool string) bool {
	for _, t := range p.Tools {
		if t == tool || t == "*" {
			return true
		}
	}
	return false
}

type document struct {
	Agents map[string]Policy `yaml:"agents"`
}

// Registry is the permissions document (permissions.yaml), keyed by agent.
type Registry struct {
	policies map[string]Policy
}

func NewRegistry() *Registry {
	return &Registry{
		policies: make(map[string]Policy),
	}
}

// Load reads a permissions document of the form
//
//	agents:
//	  coding:
//	    tools: [code_executor, file_reader]
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse permissions %s: %w", path, err)
	}

	r := NewRegistry()
	for agent, p := range doc.Agents {
		p.Agent = agent
		r.Register(p)
	}
	return r, nil
}

func (r *Registry) Register(p Policy) {
	r.policies[p.Agent] = p
}

func (r *Registry) Get(agent string) (Policy, error) {
	p, ok := r.policies[agent]
	if !ok {
		return Policy{}, fmt.Errorf("policy not found: %s", agent)
	}
	return p, nil
}

// Allows reports whether agent may use tool. Unknown agents are allowed nothing.
func (r *Registry) Allows(agent, tool string) bool {
	if r == nil {
		return false
	}
	p, ok := r.policies[agent]
	if !ok {
		return false
	}
	return p.Allows(tool)
}

// Len returns the number of agents with a policy.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.policies)
}
