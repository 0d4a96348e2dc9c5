package app

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/pstuifzand/treestate/internal/config"
	"github.com/pstuifzand/treestate/internal/dnd"
	"github.com/pstuifzand/treestate/internal/engine"
	"github.com/pstuifzand/treestate/internal/history"
	"github.com/pstuifzand/treestate/internal/model"
	"github.com/pstuifzand/treestate/internal/socket"
	"github.com/pstuifzand/treestate/internal/storage"
)

// App is the main application controller. It owns one tree engine and
// applies socket commands to it from a single goroutine.
type App struct {
	config    *config.Config
	store     *storage.JSONStore
	engine    *engine.Engine
	dnd       *dnd.Adapter
	server    *socket.Server
	backups   *storage.BackupManager
	history   *history.Manager
	sessionID string
	backedUp  bool
}

// NewApp creates a new App serving the forest stored at filePath.
// An empty filePath serves an in-memory forest.
func NewApp(filePath string, cfg *config.Config) (*App, error) {
	store := storage.NewJSONStore(filePath)
	items, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load tree: %w", err)
	}

	a := &App{
		config:    cfg,
		store:     store,
		sessionID: uuid.NewString()[:8],
	}
	if a.backups, err = storage.NewBackupManager(cfg.DataPath("backups")); err != nil {
		log.Printf("Backups disabled: %v", err)
	}
	if a.history, err = history.NewManager(cfg.DataPath("history")); err != nil {
		log.Printf("Search history disabled: %v", err)
	}
	a.engine = engine.New(items, a.options())
	a.dnd = dnd.New(cfg.GroupID, cfg.AcceptedTypes, a.engine)

	log.Printf("Loaded %d root items from %q", len(items), filePath)
	return a, nil
}

// options builds engine options from the config, session settings included
func (a *App) options() engine.Options {
	mode := a.config.SelectionMode
	if v := a.config.Get("selection_mode"); v != "" {
		if parsed, err := model.ParseSelectionMode(v); err == nil {
			mode = parsed
		} else {
			log.Printf("Ignoring selection_mode setting: %v", err)
		}
	}

	return engine.Options{
		SelectionMode:     mode,
		AllowsExpansion:   a.config.GetBool("allows_expansion", a.config.AllowsExpansion),
		AllowsVisibility:  a.config.GetBool("allows_visibility", a.config.AllowsVisibility),
		SelectedKeys:      model.Keys(),
		OnSelectionChange: a.selectionChanged,
		OnUpdate:          a.treeUpdated,
	}
}

func (a *App) selectionChanged(sel model.Selection) {
	log.Printf("Selection changed: %s", sel)
}

// treeUpdated persists the forest when autosave is on. The first save of a
// session backs up the file as it was on disk.
func (a *App) treeUpdated(items []model.Item) {
	if a.store.FilePath == "" || !a.config.GetBool("autosave", true) {
		return
	}
	if !a.backedUp && a.backups != nil && a.config.GetBool("backup", true) && a.store.FileExists() {
		a.createBackup()
	}
	if err := a.store.Save(items); err != nil {
		log.Printf("Failed to save tree: %v", err)
	}
}

func (a *App) createBackup() {
	a.backedUp = true
	previous, err := a.store.Load()
	if err != nil {
		log.Printf("Failed to read tree for backup: %v", err)
		return
	}
	path, err := a.backups.CreateBackup(previous, a.store.FilePath, a.sessionID)
	if err != nil {
		log.Printf("Failed to create backup: %v", err)
		return
	}
	log.Printf("Backup written to %s", path)
}

// Listen opens the command socket. An empty socketPath uses the
// per-process socket in socket.SocketDir.
func (a *App) Listen(socketPath string) error {
	var server *socket.Server
	var err error
	if socketPath == "" {
		server, err = socket.NewServer(os.Getpid())
	} else {
		server, err = socket.NewServerAt(socketPath)
	}
	if err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	a.server = server
	return nil
}

// Run serves socket commands until ctx is cancelled
func (a *App) Run(ctx context.Context) error {
	if a.server == nil {
		if err := a.Listen(""); err != nil {
			return err
		}
	}
	a.server.Start()
	defer a.server.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("Shutting down: %v", ctx.Err())
			return nil
		case msg := <-a.server.Messages():
			response := a.handleSocketMessage(ctx, msg)
			if msg.ResponseChan != nil {
				msg.ResponseChan <- response
			}
		}
	}
}

// Engine returns the tree engine
func (a *App) Engine() *engine.Engine {
	return a.engine
}
