package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/scrypster/kaosdraw/pkg/types"
)

// ErrUnknownKind is returned when an item of an unrecognized kind is requested.
var ErrUnknownKind = errors.New("unknown item kind")

// CreateItem builds a new item of the given kind, assigns it a unique
// reference and the next free identifier, and adds it to the model.
// A reference collision is retried with a fresh UUID; an identifier
// collision (e.g. with a user-renamed item) is retried with the next number.
func (m *Model) CreateItem(kind types.ItemKind, id uuid.UUID) (*types.Item, error) {
	if !types.IsValidItemKind(string(kind)) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	item := types.NewItem(kind, id.String())
	for m.Lookup(item.Reference) != nil {
		item = types.NewItem(kind, uuid.NewString())
	}

	prefix := types.IdentifierPrefix(kind)
	item.Identifier = prefix + strconv.Itoa(m.IssueNextIdentifierNumber(string(kind)))
	for m.FindItem(item.Identifier, AttrIdentifier) != nil {
		item.Identifier = prefix + strconv.Itoa(m.IssueNextIdentifierNumber(string(kind)))
	}

	m.AddItem(item)
	return item, nil
}

// RestoreItem adds an item with a given reference and identifier, as when
// loading a saved document. An empty reference, or one already in the model,
// is replaced by a fresh one. If the identifier has the kind's auto-issued
// form (prefix + number) the kind's counter is raised past it so later
// CreateItem calls do not reissue it.
func (m *Model) RestoreItem(kind types.ItemKind, reference, identifier string) (*types.Item, error) {
	if !types.IsValidItemKind(string(kind)) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	item := types.NewItem(kind, uuid.NewString())
	if reference != "" && m.Lookup(reference) == nil {
		item.Reference = reference
	}
	for m.Lookup(item.Reference) != nil {
		item = types.NewItem(kind, uuid.NewString())
	}
	item.Identifier = identifier

	prefix := types.IdentifierPrefix(kind)
	if strings.HasPrefix(identifier, prefix) {
		if n, err := strconv.Atoi(identifier[len(prefix):]); err == nil && n > 0 {
			m.reserveIdentifierNumber(string(kind), n)
		}
	}

	m.AddItem(item)
	return item, nil
}

// NewItem is CreateItem with a freshly generated UUID.
func (m *Model) NewItem(kind types.ItemKind) (*types.Item, error) {
	return m.CreateItem(kind, uuid.New())
}
