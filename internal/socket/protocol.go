package socket

import (
	json "github.com/goccy/go-json"

	"github.com/pstuifzand/treestate/internal/model"
)

// Message represents a command sent to the running treestate instance
type Message struct {
	Command    string              `json:"command"`
	Keys       []string            `json:"keys,omitempty"`
	All        bool                `json:"all,omitempty"`   // Address every item instead of Keys
	State      string              `json:"state,omitempty"` // "on", "off" or empty to flip
	Revertable bool                `json:"revertable,omitempty"`
	Target     string              `json:"target,omitempty"`   // Drop target key
	Position   string              `json:"position,omitempty"` // "before" or "after"
	Parent     string              `json:"parent,omitempty"`
	Index      int                 `json:"index,omitempty"`
	Query      string              `json:"query,omitempty"`
	Items      []map[string]string `json:"items,omitempty"` // Drag payloads
	Patch      *model.Patch        `json:"patch,omitempty"`
	Name       string              `json:"name,omitempty"` // Setting name for "set", format for "import"
	Value      string              `json:"value,omitempty"`
	Path       string              `json:"path,omitempty"` // File for "export" and "import"
	Viewable   bool                `json:"viewable,omitempty"`
	Width      int                 `json:"width,omitempty"` // Line width for text exports

	// ResponseChan receives the reply once the command has been applied
	ResponseChan chan *Response `json:"-"`
}

// Selection converts the addressed keys into an engine selection
func (m Message) Selection() model.Selection {
	if m.All {
		return model.AllKeys
	}
	return model.Keys(m.Keys...)
}

// Response represents the response from the server
type Response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Command types
const (
	CommandGet       = "get"
	CommandExpand    = "expand"
	CommandRevert    = "revert"
	CommandSelect    = "select"
	CommandView      = "view"
	CommandDragStart = "drag_start"
	CommandDragEnd   = "drag_end"
	CommandDragItems = "drag_items"
	CommandDrop      = "drop"
	CommandReorder   = "reorder"
	CommandRootDrop  = "root_drop"
	CommandRemove    = "remove"
	CommandMove      = "move"
	CommandUpdate    = "update"
	CommandFind      = "find"
	CommandSet       = "set"
	CommandExport    = "export"
	CommandImport    = "import"
	CommandHistory   = "history"
	CommandBackups   = "backups"
)
