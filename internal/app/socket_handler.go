package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pstuifzand/treestate/internal/dnd"
	"github.com/pstuifzand/treestate/internal/export"
	import_parser "github.com/pstuifzand/treestate/internal/import"
	"github.com/pstuifzand/treestate/internal/model"
	"github.com/pstuifzand/treestate/internal/search"
	"github.com/pstuifzand/treestate/internal/socket"
	"github.com/pstuifzand/treestate/internal/storage"
)

const (
	dropTimeout     = 5 * time.Second
	findHistoryFile = "find.toml"
	historyLimit    = 100
)

// treeData is the payload of a get response
type treeData struct {
	Items            []model.Item        `json:"items"`
	SelectedKeys     model.Selection     `json:"selectedKeys"`
	SelectionMode    model.SelectionMode `json:"selectionMode"`
	AllowsExpansion  bool                `json:"allowsExpansion"`
	AllowsVisibility bool                `json:"allowsVisibility"`
}

// handleSocketMessage applies one socket command and builds its reply
func (a *App) handleSocketMessage(ctx context.Context, msg socket.Message) *socket.Response {
	log.Printf("Received socket message: command=%s, keys=%v, all=%v", msg.Command, msg.Keys, msg.All)

	var data any
	var err error

	switch msg.Command {
	case socket.CommandGet:
		data = a.treeData()
	case socket.CommandExpand:
		err = a.withToggle(msg, func(state model.Toggle) {
			a.engine.ToggleIsExpanded(msg.Selection(), state, msg.Revertable)
		})
	case socket.CommandRevert:
		a.engine.RevertIsExpanded()
	case socket.CommandSelect:
		err = a.withToggle(msg, func(state model.Toggle) {
			a.engine.ToggleIsSelected(msg.Selection(), state)
		})
		data = a.engine.SelectedKeys()
	case socket.CommandView:
		err = a.withToggle(msg, func(state model.Toggle) {
			a.engine.ToggleIsViewable(msg.Selection(), state)
		})
	case socket.CommandDragStart:
		a.dnd.OnDragStart(model.NewKeySet(msg.Keys...))
	case socket.CommandDragEnd:
		a.dnd.OnDragEnd()
	case socket.CommandDragItems:
		data, err = a.dnd.GetItems(model.NewKeySet(msg.Keys...))
	case socket.CommandDrop, socket.CommandRootDrop:
		err = a.handleDrop(ctx, msg)
	case socket.CommandReorder:
		var target dnd.DropTarget
		if target, err = dropTarget(msg); err == nil {
			a.dnd.OnReorder(target, model.NewKeySet(msg.Keys...))
		}
	case socket.CommandRemove:
		if msg.All {
			a.engine.RemoveSelectedItems()
		} else {
			a.engine.Remove(msg.Keys...)
		}
	case socket.CommandMove:
		if len(msg.Keys) != 1 {
			err = fmt.Errorf("move takes exactly one key, got %d", len(msg.Keys))
			break
		}
		a.engine.Move(msg.Keys[0], msg.Parent, msg.Index)
	case socket.CommandUpdate:
		if len(msg.Keys) != 1 || msg.Patch == nil {
			err = fmt.Errorf("update takes one key and a patch")
			break
		}
		a.engine.Update(msg.Keys[0], *msg.Patch)
	case socket.CommandFind:
		data, err = a.find(msg.Query)
	case socket.CommandSet:
		err = a.handleSetCommand(msg)
	case socket.CommandExport:
		data, err = a.handleExport(msg)
	case socket.CommandImport:
		data, err = a.handleImport(msg)
	case socket.CommandHistory:
		data, err = a.findHistory()
	case socket.CommandBackups:
		data, err = a.listBackups()
	default:
		err = fmt.Errorf("unknown command: %s", msg.Command)
	}

	if err != nil {
		log.Printf("Command %s failed: %v", msg.Command, err)
		return &socket.Response{Success: false, Message: err.Error()}
	}
	return a.reply(data)
}

func (a *App) reply(data any) *socket.Response {
	response := &socket.Response{Success: true, Message: "ok"}
	if data == nil {
		return response
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return &socket.Response{Success: false, Message: fmt.Sprintf("failed to encode reply: %v", err)}
	}
	response.Data = raw
	return response
}

func (a *App) treeData() treeData {
	snap := a.engine.Snapshot()
	return treeData{
		Items:            a.engine.Items(),
		SelectedKeys:     snap.SelectedKeys,
		SelectionMode:    snap.SelectionMode,
		AllowsExpansion:  snap.AllowsExpansion,
		AllowsVisibility: snap.AllowsVisibility,
	}
}

// withToggle parses the message state and runs fn with it
func (a *App) withToggle(msg socket.Message, fn func(model.Toggle)) error {
	state, err := model.ParseToggle(msg.State)
	if err != nil {
		return err
	}
	fn(state)
	return nil
}

// handleDrop decodes dropped payloads and applies the drop
func (a *App) handleDrop(ctx context.Context, msg socket.Message) error {
	items := make([]dnd.DropItem, 0, len(msg.Items))
	for _, payload := range msg.Items {
		items = append(items, dnd.TextItem(payload))
	}

	ctx, cancel := context.WithTimeout(ctx, dropTimeout)
	defer cancel()

	if msg.Command == socket.CommandRootDrop {
		return a.dnd.OnRootDrop(ctx, items)
	}

	target, err := dropTarget(msg)
	if err != nil {
		return err
	}
	return a.dnd.OnInsert(ctx, target, items)
}

func dropTarget(msg socket.Message) (dnd.DropTarget, error) {
	if msg.Target == "" {
		return dnd.DropTarget{}, fmt.Errorf("missing drop target")
	}
	target := dnd.DropTarget{Key: msg.Target}
	switch msg.Position {
	case "", "before":
		target.Position = dnd.DropBefore
	case "after":
		target.Position = dnd.DropAfter
	default:
		return dnd.DropTarget{}, fmt.Errorf("unknown drop position %q", msg.Position)
	}
	return target, nil
}

func (a *App) find(query string) ([]string, error) {
	expr, err := search.ParseQuery(query)
	if err != nil {
		return nil, err
	}
	if query != "" && a.history != nil {
		if err := a.history.Add(findHistoryFile, query, historyLimit); err != nil {
			log.Printf("Failed to record search history: %v", err)
		}
	}
	keys := search.Find(a.engine.Root(), expr)
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (a *App) findHistory() ([]string, error) {
	if a.history == nil {
		return []string{}, nil
	}
	return a.history.Load(findHistoryFile)
}

func (a *App) listBackups() ([]storage.BackupMetadata, error) {
	if a.backups == nil || a.store.FilePath == "" {
		return []storage.BackupMetadata{}, nil
	}
	backups, err := a.backups.FindBackupsForFile(a.store.FilePath)
	if err != nil {
		return nil, err
	}
	if backups == nil {
		backups = []storage.BackupMetadata{}
	}
	return backups, nil
}

// handleExport renders the forest as markdown, or as an indented text tree
// when the name is "text". With a path the result is written to that file,
// otherwise it is returned.
func (a *App) handleExport(msg socket.Message) (any, error) {
	items := a.engine.Items()

	var content string
	switch msg.Name {
	case "", "markdown":
		if msg.Path != "" {
			return nil, export.ExportToMarkdown(items, msg.Path, msg.Viewable)
		}
		content = export.RenderMarkdown(items, msg.Viewable)
	case "text":
		content = export.RenderText(items, msg.Width, msg.Viewable)
	default:
		return nil, fmt.Errorf("unknown export format: %s", msg.Name)
	}

	if msg.Path == "" {
		return content, nil
	}
	if err := os.WriteFile(msg.Path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	return nil, nil
}

// handleImport parses text, inline or read from a file, and appends the
// resulting items to the parent group. It returns the keys of the imported
// root items that were inserted.
func (a *App) handleImport(msg socket.Message) ([]string, error) {
	content := msg.Value
	if msg.Path != "" {
		data, err := os.ReadFile(msg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read import file: %w", err)
		}
		content = string(data)
	}

	format := import_parser.ImportFormat(msg.Name)
	if format == import_parser.FormatAuto {
		format = import_parser.DetectFormat(msg.Path)
	}
	items, err := import_parser.ImportFile(content, format)
	if err != nil {
		return nil, err
	}
	if msg.Parent != "" {
		parent, ok := a.engine.Lookup()[msg.Parent]
		if !ok {
			return nil, fmt.Errorf("unknown parent %s", msg.Parent)
		}
		if !parent.Value.IsGroup() {
			return nil, fmt.Errorf("parent %s is not a group", msg.Parent)
		}
	}

	a.engine.Append(msg.Parent, items...)

	keys := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := a.engine.GetItem(item.ID); ok {
			keys = append(keys, item.ID)
		}
	}
	return keys, nil
}

// handleSetCommand changes a session setting and reapplies the engine options
func (a *App) handleSetCommand(msg socket.Message) error {
	switch msg.Name {
	case "selection_mode":
		if _, err := model.ParseSelectionMode(msg.Value); err != nil {
			return err
		}
	case "allows_expansion", "allows_visibility", "autosave", "backup":
	default:
		return fmt.Errorf("unknown setting: %s", msg.Name)
	}

	a.config.Set(msg.Name, msg.Value)
	a.engine.SetOptions(a.options())
	log.Printf("Setting %s = %s", msg.Name, msg.Value)
	return nil
}
