package views

// View is a task display configuration
type View struct {
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

// Field is a column of a view
type Field struct {
	Name     string `yaml:"name"`
	Width    int    `yaml:"width,omitempty"`
	Truncate bool   `yaml:"truncate,omitempty"`
}

// AvailableFields returns the list of valid field names
var AvailableFields = []string{
	"status",
	"text",
	"due_date",
	"due_status",
	"id",
}

// DefaultView returns the built-in default view
func DefaultView() *View {
	return &View{
		Name: "default",
		Fields: []Field{
			{Name: "status"},
			{Name: "text", Width: 40, Truncate: true},
			{Name: "due_date"},
			{Name: "due_status"},
		},
	}
}

// AllView returns the built-in view that also shows task IDs
func AllView() *View {
	return &View{
		Name: "all",
		Fields: []Field{
			{Name: "id", Width: 8, Truncate: true},
			{Name: "status"},
			{Name: "text"},
			{Name: "due_date"},
			{Name: "due_status"},
		},
	}
}

// ViewByName returns a built-in view, falling back to the default one.
func ViewByName(name string) *View {
	if name == "all" {
		return AllView()
	}
	return DefaultView()
}
