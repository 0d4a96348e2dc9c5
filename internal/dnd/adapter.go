// Package dnd adapts the tree engine to drag and drop: it turns selected
// keys into typed transfer payloads and turns dropped payloads back into
// structural edits.
package dnd

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/pstuifzand/treestate/internal/model"
	"github.com/pstuifzand/treestate/internal/tree"
)

// DropOperation is the operation reported to the drag source
type DropOperation string

const DropMove DropOperation = "move"

// DropPosition places a drop relative to its target
type DropPosition int

const (
	DropBefore DropPosition = iota
	DropAfter
)

func (p DropPosition) String() string {
	if p == DropAfter {
		return "after"
	}
	return "before"
}

// DropTarget is the item a drop lands next to
type DropTarget struct {
	Key      string
	Position DropPosition
}

func (t DropTarget) placement() model.Placement {
	if t.Position == DropAfter {
		return model.PlaceAfter
	}
	return model.PlaceBefore
}

// Actions is the part of the engine the adapter drives
type Actions interface {
	Root() *model.TreeNode
	Lookup() model.Lookup
	Logger() *log.Logger
	GetItem(key string) (model.Item, bool)
	ToggleIsExpanded(sel model.Selection, state model.Toggle, revertable bool)
	RevertIsExpanded()
	MoveItems(anchor string, place model.Placement, items ...model.Item) bool
}

// Adapter holds the drag and drop handlers of one tree group
type Adapter struct {
	groupID  string
	accepted []string
	actions  Actions
}

// New creates an adapter. acceptedTypes may be given with or without the
// tree- prefix; an empty list accepts any tree item.
func New(groupID string, acceptedTypes []string, actions Actions) *Adapter {
	accepted := make([]string, 0, len(acceptedTypes))
	for _, typ := range acceptedTypes {
		accepted = append(accepted, TypeKey(typ))
	}
	if len(accepted) == 0 {
		accepted = []string{TypeKey(AnyType)}
	}
	return &Adapter{
		groupID:  groupID,
		accepted: accepted,
		actions:  actions,
	}
}

// GroupID returns the tree group this adapter belongs to
func (a *Adapter) GroupID() string {
	return a.groupID
}

// AcceptedTypes returns the payload types drops are read from, in priority order
func (a *Adapter) AcceptedTypes() []string {
	return append([]string(nil), a.accepted...)
}

// DropOperation is always a move
func (a *Adapter) DropOperation() DropOperation {
	return DropMove
}

// GetItems encodes one payload per selected key, in tree order
func (a *Adapter) GetItems(keys model.KeySet) ([]DragItem, error) {
	var payloads []DragItem
	for _, key := range a.ordered(keys) {
		item, ok := a.actions.GetItem(key)
		if !ok {
			continue
		}
		payload, err := encodeItem(item)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, payload)
	}
	return payloads, nil
}

// OnDragStart collapses the dragged groups, recording their state for revert
func (a *Adapter) OnDragStart(keys model.KeySet) {
	a.actions.ToggleIsExpanded(model.Selection{Keys: keys}, model.ToggleOff, true)
}

// OnDragEnd restores whatever expansion the drag changed
func (a *Adapter) OnDragEnd() {
	a.actions.RevertIsExpanded()
}

// OnInsert moves the dropped items next to target. A target that is not an
// item of this tree fails the drop before anything is removed.
func (a *Adapter) OnInsert(ctx context.Context, target DropTarget, items []DropItem) error {
	if !a.isTarget(target.Key) {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, target.Key)
	}
	values, err := a.decode(ctx, items)
	if err != nil {
		return err
	}
	if a.landsInside(target.Key, values) {
		a.actions.Logger().Printf("dnd: drop target %s is part of the dropped items, ignoring", target.Key)
		return nil
	}

	a.actions.MoveItems(target.Key, target.placement(), values...)
	return nil
}

// OnReorder moves items of this tree next to target
func (a *Adapter) OnReorder(target DropTarget, keys model.KeySet) {
	if !a.isTarget(target.Key) {
		a.actions.Logger().Printf("dnd: reorder target %s not found, ignoring", target.Key)
		return
	}
	var values []model.Item
	for _, key := range a.ordered(keys) {
		if item, ok := a.actions.GetItem(key); ok {
			values = append(values, item)
		}
	}
	if len(values) == 0 || a.landsInside(target.Key, values) {
		return
	}

	a.actions.MoveItems(target.Key, target.placement(), values...)
}

// OnRootDrop moves the dropped items to the end of the root level
func (a *Adapter) OnRootDrop(ctx context.Context, items []DropItem) error {
	values, err := a.decode(ctx, items)
	if err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	a.actions.MoveItems("", model.PlaceInside, values...)
	return nil
}

// isTarget reports whether key is an item a drop can land next to
func (a *Adapter) isTarget(key string) bool {
	_, ok := a.actions.Lookup()[key]
	return ok && !model.IsRootKey(key)
}

// decode reads every item concurrently. The first failure fails the whole drop.
func (a *Adapter) decode(ctx context.Context, items []DropItem) ([]model.Item, error) {
	values := make([]model.Item, len(items))
	g, ctx := errgroup.WithContext(ctx)
	for idx, item := range items {
		g.Go(func() error {
			value, err := decodeItem(ctx, a.accepted, item)
			if err != nil {
				return err
			}
			values[idx] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}

// landsInside reports whether target is one of values or sits inside one of them
func (a *Adapter) landsInside(target string, values []model.Item) bool {
	lookup := a.actions.Lookup()
	for _, value := range values {
		if lookup.IsAncestor(value.ID, target) {
			return true
		}
	}
	return false
}

// ordered returns the keys present in the tree, in tree order
func (a *Adapter) ordered(keys model.KeySet) []string {
	var out []string
	for _, key := range tree.Keys(a.actions.Root()) {
		if keys.Has(key) {
			out = append(out, key)
		}
	}
	return out
}
