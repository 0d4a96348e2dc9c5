package dnd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/pstuifzand/treestate/internal/model"
)

const (
	// TypePrefix namespaces tree payload types
	TypePrefix = "tree-"
	// AnyType is offered by every dragged node
	AnyType = "all"
)

var (
	ErrNoAcceptedType = errors.New("no accepted type in drop item")
	ErrEmptyPayload   = errors.New("empty drop payload")
	ErrTypeMissing    = errors.New("type not present in drop item")
	ErrUnknownTarget  = errors.New("drop target not found")
)

// DragItem maps payload types to the JSON encoded item
type DragItem map[string]string

// DropItem is one dropped entry whose payload is read per type
type DropItem interface {
	GetText(ctx context.Context, typ string) (string, error)
}

// TextItem is a DropItem backed by an in-memory payload map
type TextItem DragItem

// GetText returns the payload stored under typ
func (t TextItem) GetText(ctx context.Context, typ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, ok := t[typ]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTypeMissing, typ)
	}
	return text, nil
}

// TypeKey returns the payload key for a node type
func TypeKey(typ string) string {
	if strings.HasPrefix(typ, TypePrefix) {
		return typ
	}
	return TypePrefix + typ
}

// itemTypes lists the payload keys an item is offered under
func itemTypes(item model.Item) []string {
	types := []string{TypeKey(AnyType)}
	seen := model.NewKeySet(types[0])
	add := func(typ string) {
		if typ == "" {
			return
		}
		key := TypeKey(typ)
		if !seen.Has(key) {
			seen.Add(key)
			types = append(types, key)
		}
	}
	add(item.Type)
	for _, typ := range item.Types {
		add(typ)
	}
	return types
}

// encodeItem builds the drag payload for an item
func encodeItem(item model.Item) (DragItem, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item %s: %w", item.ID, err)
	}
	payload := make(DragItem)
	for _, typ := range itemTypes(item) {
		payload[typ] = string(data)
	}
	return payload, nil
}

// decodeItem reads the first accepted type the item carries, in declared
// order, and parses it
func decodeItem(ctx context.Context, accepted []string, item DropItem) (model.Item, error) {
	var text string
	found := false
	for _, typ := range accepted {
		t, err := item.GetText(ctx, typ)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return model.Item{}, ctxErr
			}
			continue
		}
		text, found = t, true
		break
	}
	if !found {
		return model.Item{}, ErrNoAcceptedType
	}
	if text == "" {
		return model.Item{}, ErrEmptyPayload
	}

	var value model.Item
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return model.Item{}, fmt.Errorf("failed to parse drop payload: %w", err)
	}
	return value, nil
}
