package catalog

import (
	"fmt"
)

// Path groups related tasks into a prerequisite chain.
type Path string

const (
	PathOnboarding Path = "onboarding"
	PathOutreach   Path = "outreach"
	PathLobbying   Path = "lobbying"
	PathSpecial    Path = "special"
)

func (p Path) Valid() bool {
	switch p {
	case PathOnboarding, PathOutreach, PathLobbying, PathSpecial:
		return true
	}
	return false
}

// Task is one catalog entry. The catalog is fixed at process start; the XP
// value is snapshotted into completion records, so editing the catalog later
// never rewrites history.
type Task struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       Path   `json:"path"`
	Level      int    `json:"level"`
	XP         int    `json:"xp"`
	Repeatable bool   `json:"repeatable"`
	Icon       string `json:"icon"`
}

// Catalog is the immutable task registry. Construct it once with New (or
// Default) and pass it by reference; it is safe for concurrent reads.
type Catalog struct {
	tasks       []Task
	byID        map[string]Task
	byPathLevel map[Path]map[int][]string
}

// New validates the task list once and builds the lookup indexes.
func New(tasks []Task) (*Catalog, error) {
	c := &Catalog{
		tasks:       make([]Task, len(tasks)),
		byID:        make(map[string]Task, len(tasks)),
		byPathLevel: make(map[Path]map[int][]string),
	}
	copy(c.tasks, tasks)

	for i, task := range c.tasks {
		if task.ID == "" {
			return nil, fmt.Errorf("task at index %d has an empty id", i)
		}
		if _, dup := c.byID[task.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q", task.ID)
		}
		if task.Name == "" {
			return nil, fmt.Errorf("task %q has an empty name", task.ID)
		}
		if !task.Path.Valid() {
			return nil, fmt.Errorf("task %q has unknown path %q", task.ID, task.Path)
		}
		if task.Level < 0 {
			return nil, fmt.Errorf("task %q has negative level %d", task.ID, task.Level)
		}
		if task.XP <= 0 {
			return nil, fmt.Errorf("task %q has non-positive xp %d", task.ID, task.XP)
		}

		c.byID[task.ID] = task
		levels, ok := c.byPathLevel[task.Path]
		if !ok {
			levels = make(map[int][]string)
			c.byPathLevel[task.Path] = levels
		}
		levels[task.Level] = append(levels[task.Level], task.ID)
	}

	return c, nil
}

// Default returns the built-in catalog. It panics on a broken definition,
// which can only happen from editing defaultTasks itself.
func Default() *Catalog {
	c, err := New(defaultTasks)
	if err != nil {
		panic(fmt.Sprintf("catalog: invalid built-in task list: %v", err))
	}
	return c
}

// Lookup returns the task with the given id.
func (c *Catalog) Lookup(id string) (Task, bool) {
	task, ok := c.byID[id]
	return task, ok
}

// All returns every task in insertion order. The slice is a copy.
func (c *Catalog) All() []Task {
	out := make([]Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// IDsAt returns the ids of all tasks on the given path and level, in
// insertion order. Used for prerequisite evaluation.
func (c *Catalog) IDsAt(path Path, level int) []string {
	levels, ok := c.byPathLevel[path]
	if !ok {
		return nil
	}
	ids := levels[level]
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

func (c *Catalog) Len() int {
	return len(c.tasks)
}
