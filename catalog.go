package main

import (
	"fmt"
	"os"
	"slices"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"
)

const (
	EngineMysql = "mysql"
	EngineMongo = "mongo"

	DefaultRunsPerTask = 5
)

// NamespacePolicy maps a scale factor to the database the batch runs against.
type NamespacePolicy interface {
	Resolve(scaleFactor int) (string, error)
}

// SuffixNamespace accepts every positive scale factor and always appends
// the suffix, including at sf=1.
type SuffixNamespace struct {
	Base string
}

func (p SuffixNamespace) Resolve(scaleFactor int) (string, error) {
	if scaleFactor <= 0 {
		return "", &ConfigError{ScaleFactor: scaleFactor, Reason: "scale factor must be positive"}
	}
	return fmt.Sprintf("%v_sf%v", p.Base, scaleFactor), nil
}

type FixedNamespaces map[int]string

func (p FixedNamespaces) Resolve(scaleFactor int) (string, error) {
	name, ok := p[scaleFactor]
	if !ok {
		return "", &ConfigError{
			ScaleFactor: scaleFactor,
			Reason:      fmt.Sprintf("unsupported scale factor, expected one of %v", p.ScaleFactors()),
		}
	}
	return name, nil
}

func (p FixedNamespaces) ScaleFactors() []int {
	factors := make([]int, 0, len(p))
	for factor := range p {
		factors = append(factors, factor)
	}
	slices.Sort(factors)
	return factors
}

var mongoNamespaces = FixedNamespaces{
	1:   "ecommerce",
	10:  "m2bench_sf10",
	30:  "m2bench_sf30",
	100: "m2bench_sf100",
}

type Catalog struct {
	Name        string
	Engine      string
	Tasks       []Task
	DefaultRuns int
	TaskRuns    map[string]int
	Namespace   NamespacePolicy
}

func (c *Catalog) RunCountFor(task string) int {
	if runs, ok := c.TaskRuns[task]; ok && runs > 0 {
		return runs
	}
	if c.DefaultRuns > 0 {
		return c.DefaultRuns
	}
	return DefaultRunsPerTask
}

func (c *Catalog) ResolveDatabaseName(scaleFactor int) (string, error) {
	if c.Namespace == nil {
		return "", &ConfigError{ScaleFactor: scaleFactor, Reason: fmt.Sprintf("catalog %v has no namespace policy", c.Name)}
	}
	return c.Namespace.Resolve(scaleFactor)
}

func (c *Catalog) Validate() error {
	if len(c.Tasks) == 0 {
		return fmt.Errorf("catalog %v has no tasks", c.Name)
	}
	seen := make(map[string]bool, len(c.Tasks))
	for _, task := range c.Tasks {
		if task.Name == "" {
			return fmt.Errorf("catalog %v has a task without name", c.Name)
		}
		if seen[task.Name] {
			return fmt.Errorf("catalog %v has duplicate task %v", c.Name, task.Name)
		}
		seen[task.Name] = true
		if task.Query == nil || task.Query.Engine() != c.Engine {
			return fmt.Errorf("task %v does not target engine %v", task.Name, c.Engine)
		}
	}
	for name, runs := range c.TaskRuns {
		if runs <= 0 {
			return fmt.Errorf("catalog %v: run override for %v must be positive, got %v", c.Name, name, runs)
		}
	}
	return nil
}

var builtinCatalogs = map[string]func() *Catalog{
	EngineMysql + "/tr": catalogTrMysql,
	EngineMongo + "/tr": catalogTrMongo,
	EngineMysql + "/q":  catalogQMysql,
	EngineMongo + "/q":  catalogQMongo,
}

func BuiltinCatalog(engine string, workload string) (*Catalog, error) {
	factory, ok := builtinCatalogs[engine+"/"+workload]
	if !ok {
		return nil, fmt.Errorf("unknown workload %v for engine %v", workload, engine)
	}
	return factory(), nil
}

type catalogFile struct {
	Name        string         `yaml:"name"`
	Engine      string         `yaml:"engine"`
	DefaultRuns int            `yaml:"default_runs"`
	TaskRuns    map[string]int `yaml:"task_runs"`
	Namespace   struct {
		Base  string         `yaml:"base"`
		Fixed map[int]string `yaml:"fixed"`
	} `yaml:"namespace"`
	Tasks []struct {
		Name       string `yaml:"name"`
		SQL        string `yaml:"sql"`
		Collection string `yaml:"collection"`
		Pipeline   string `yaml:"pipeline"`
	} `yaml:"tasks"`
}

// LoadCatalog reads a YAML catalog. Relational tasks carry `sql`, document
// tasks carry `collection` and `pipeline` written as an Extended JSON array.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	catalog := &Catalog{
		Name:        file.Name,
		Engine:      file.Engine,
		DefaultRuns: file.DefaultRuns,
		TaskRuns:    file.TaskRuns,
	}
	switch {
	case len(file.Namespace.Fixed) > 0:
		catalog.Namespace = FixedNamespaces(file.Namespace.Fixed)
	case file.Namespace.Base != "":
		catalog.Namespace = SuffixNamespace{Base: file.Namespace.Base}
	}
	for _, entry := range file.Tasks {
		task := Task{Name: entry.Name}
		switch file.Engine {
		case EngineMysql:
			task.Query = RelationalQuery{Statement: entry.SQL}
		case EngineMongo:
			stages, err := parsePipeline(entry.Pipeline)
			if err != nil {
				return nil, fmt.Errorf("failed to parse pipeline of task %v: %w", entry.Name, err)
			}
			task.Query = PipelineQuery{Collection: entry.Collection, Stages: stages}
		default:
			return nil, fmt.Errorf("unknown engine %q in catalog %v", file.Engine, file.Name)
		}
		catalog.Tasks = append(catalog.Tasks, task)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	return catalog, nil
}

func parsePipeline(pipeline string) ([]bson.D, error) {
	var wrapper struct {
		Stages []bson.D `bson:"stages"`
	}
	err := bson.UnmarshalExtJSON([]byte(`{"stages":`+pipeline+`}`), false, &wrapper)
	if err != nil {
		return nil, err
	}
	return wrapper.Stages, nil
}
