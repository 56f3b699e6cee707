package reason

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

type PromptName string

const (
	PromptContentsPick  PromptName = "contents_pick"
	PromptPlaceReason   PromptName = "place_reason"
	PromptCreatorReason PromptName = "creator_reason"
)

//go:embed prompts.yaml
var promptsYAML []byte

type UserFacts struct {
	Name      string
	Age       string
	Gender    string
	Country   string
	Category  string
	Needs     string
	Latitude  float64
	Longitude float64
}

type PickItem struct {
	ID          int64
	Title       string
	Description string
}

type PlaceFacts struct {
	Name     string
	Category string
	Facts    string
	Keywords string
}

type CreatorFacts struct {
	Name         string
	Country      string
	Category     string
	Introduction string
}

// Input is the data every prompt template renders from. Templates read
// only the sections they need.
type Input struct {
	User    UserFacts
	Items   []PickItem
	Place   PlaceFacts
	Creator CreatorFacts
}

type Prompt struct {
	Name    string
	Version int
	System  string
	User    string
}

type promptSpec struct {
	Name    string `yaml:"name"`
	Version int    `yaml:"version"`
	System  string `yaml:"system"`
	User    string `yaml:"user"`
}

type promptFile struct {
	Prompts []promptSpec `yaml:"prompts"`
}

type compiled struct {
	version int
	system  *template.Template
	user    *template.Template
}

var (
	loadOnce sync.Once
	registry map[PromptName]compiled
	loadErr  error
)

func load() {
	registry, loadErr = parsePrompts(promptsYAML)
}

func parsePrompts(raw []byte) (map[PromptName]compiled, error) {
	var f promptFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}
	out := make(map[PromptName]compiled, len(f.Prompts))
	for _, s := range f.Prompts {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return nil, fmt.Errorf("prompt missing name")
		}
		if s.Version <= 0 {
			return nil, fmt.Errorf("invalid version for %s", name)
		}
		sysT, err := template.New("system").Option("missingkey=zero").Parse(s.System)
		if err != nil {
			return nil, fmt.Errorf("%s system template parse: %w", name, err)
		}
		userT, err := template.New("user").Option("missingkey=zero").Parse(s.User)
		if err != nil {
			return nil, fmt.Errorf("%s user template parse: %w", name, err)
		}
		out[PromptName(name)] = compiled{version: s.Version, system: sysT, user: userT}
	}
	return out, nil
}

// Build renders the named prompt.
func Build(name PromptName, in Input) (Prompt, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return Prompt{}, loadErr
	}
	c, ok := registry[name]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt: %s", string(name))
	}
	sys, err := render(c.system, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	user, err := render(c.user, in)
	if err != nil {
		return Prompt{}, fmt.Errorf("%s: %w", name, err)
	}
	return Prompt{Name: string(name), Version: c.version, System: sys, User: user}, nil
}

func render(t *template.Template, in Input) (string, error) {
	var b bytes.Buffer
	if err := t.Execute(&b, in); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
