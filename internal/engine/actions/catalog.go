package actions

import (
	"fmt"
	"sort"
)

// Action is a webhook event type a subscription can register for.
// OrganizationOnly and Model are internal and never leave the process.
type Action struct {
	Key              string
	Name             string
	Description      string
	OrganizationOnly bool
	Model            string
}

// Info is the public view of an Action.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Key         string `json:"key"`
}

const (
	ProjectCreated     = "PROJECT_CREATED"
	ProjectUpdated     = "PROJECT_UPDATED"
	ProjectDeleted     = "PROJECT_DELETED"
	TasksCreated       = "TASKS_CREATED"
	TasksDeleted       = "TASKS_DELETED"
	AnnotationCreated  = "ANNOTATION_CREATED"
	AnnotationsCreated = "ANNOTATIONS_CREATED"
	AnnotationUpdated  = "ANNOTATION_UPDATED"
	AnnotationsDeleted = "ANNOTATIONS_DELETED"
	LabelLinkCreated   = "LABEL_LINK_CREATED"
	LabelLinkUpdated   = "LABEL_LINK_UPDATED"
	LabelLinkDeleted   = "LABEL_LINK_DELETED"
)

// Catalog is an immutable key -> Action table. It is safe for concurrent
// use because nothing mutates it after construction.
type Catalog struct {
	byKey map[string]Action
	keys  []string
}

// NewCatalog builds a catalog, rejecting empty and duplicate keys.
func NewCatalog(entries ...Action) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]Action, len(entries))}
	for _, a := range entries {
		if a.Key == "" {
			return nil, fmt.Errorf("action %q has an empty key", a.Name)
		}
		if _, dup := c.byKey[a.Key]; dup {
			return nil, fmt.Errorf("duplicate action key %q", a.Key)
		}
		c.byKey[a.Key] = a
		c.keys = append(c.keys, a.Key)
	}
	sort.Strings(c.keys)
	return c, nil
}

func MustNewCatalog(entries ...Action) *Catalog {
	c, err := NewCatalog(entries...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Has(key string) bool {
	_, ok := c.byKey[key]
	return ok
}

func (c *Catalog) Get(key string) (Action, bool) {
	a, ok := c.byKey[key]
	return a, ok
}

// Keys returns the registered keys in sorted order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Describe returns a fresh key -> Info map. Only name, description and key
// are copied.
func (c *Catalog) Describe() map[string]Info {
	out := make(map[string]Info, len(c.byKey))
	for key, a := range c.byKey {
		out[key] = Info{
			Name:        a.Name,
			Description: a.Description,
			Key:         a.Key,
		}
	}
	return out
}

// Default is the process-wide catalog.
var Default = MustNewCatalog(
	Action{Key: ProjectCreated, Name: "Project created", Description: "A project was created in the organization", OrganizationOnly: true, Model: "project"},
	Action{Key: ProjectUpdated, Name: "Project updated", Description: "Project settings were changed", Model: "project"},
	Action{Key: ProjectDeleted, Name: "Project deleted", Description: "A project was deleted", OrganizationOnly: true, Model: "project"},
	Action{Key: TasksCreated, Name: "Task created", Description: "One or more tasks were imported into a project", Model: "task"},
	Action{Key: TasksDeleted, Name: "Task deleted", Description: "One or more tasks were deleted from a project", Model: "task"},
	Action{Key: AnnotationCreated, Name: "Annotation created", Description: "An annotation was submitted for a task", Model: "annotation"},
	Action{Key: AnnotationsCreated, Name: "Annotations created", Description: "Annotations were created in bulk, for example by an import", Model: "annotation"},
	Action{Key: AnnotationUpdated, Name: "Annotation updated", Description: "An existing annotation was changed", Model: "annotation"},
	Action{Key: AnnotationsDeleted, Name: "Annotation deleted", Description: "One or more annotations were deleted", Model: "annotation"},
	Action{Key: LabelLinkCreated, Name: "Label link created", Description: "A label was added to a project", Model: "label_link"},
	Action{Key: LabelLinkUpdated, Name: "Label link updated", Description: "A label link of a project was changed", Model: "label_link"},
	Action{Key: LabelLinkDeleted, Name: "Label link deleted", Description: "A label was removed from a project", Model: "label_link"},
)
