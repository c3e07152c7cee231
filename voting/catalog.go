// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"strings"
)

// View is the screen the elections area is showing.
type View string

const (
	ViewList        View = "list"
	ViewSetup       View = "setup"
	ViewBooth       View = "booth"
	ViewResults     View = "results"
	ViewImpeachment View = "impeachment"
	ViewImpeachVote View = "impeach-vote"
)

type Kind string

const (
	KindElection Kind = "election"
	KindPetition Kind = "petition"
)

// Item is an entry of the catalog: exactly one of Election or Petition is
// set, as named by Kind.
type Item struct {
	Kind     Kind      `json:"kind"`
	Election *Election `json:"election,omitempty"`
	Petition *Petition `json:"petition,omitempty"`
}

func ElectionItem(e Election) Item { return Item{Kind: KindElection, Election: &e} }
func PetitionItem(p Petition) Item { return Item{Kind: KindPetition, Petition: &p} }

func (i Item) ID() string {
	switch i.Kind {
	case KindElection:
		return i.Election.ID
	case KindPetition:
		return i.Petition.ID
	default:
		return ""
	}
}

func (i Item) Title() string {
	switch i.Kind {
	case KindElection:
		return i.Election.Title
	case KindPetition:
		return "Impeachment of " + i.Petition.AccusedLeader
	default:
		return ""
	}
}

func (i Item) Description() string {
	switch i.Kind {
	case KindElection:
		return i.Election.Description
	case KindPetition:
		return i.Petition.ConstitutionalViolation
	default:
		return ""
	}
}

func (i Item) valid() bool {
	switch i.Kind {
	case KindElection:
		return i.Election != nil
	case KindPetition:
		return i.Petition != nil
	default:
		return false
	}
}

// Filter keeps the items whose title or description contains q, ignoring
// case. An empty q keeps everything.
func Filter(items []Item, q string) []Item {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if q == "" ||
			strings.Contains(strings.ToLower(it.Title()), q) ||
			strings.Contains(strings.ToLower(it.Description()), q) {
			out = append(out, it)
		}
	}
	return out
}

// Navigator holds the one active view and its selection. There is no
// history: Back always lands on the list.
type Navigator struct {
	view     View
	selected *Item
}

func NewNavigator() *Navigator {
	return &Navigator{view: ViewList}
}

func (n *Navigator) View() View { return n.view }

func (n *Navigator) Selected() (Item, bool) {
	if n.selected == nil {
		return Item{}, false
	}
	return *n.selected, true
}

// SelectForVoting opens the booth for an election or the impeachment vote
// for a petition.
func (n *Navigator) SelectForVoting(item Item) error {
	if !item.valid() {
		return ErrUnknownKind
	}
	switch item.Kind {
	case KindElection:
		return n.open(ViewBooth, &item)
	case KindPetition:
		return n.open(ViewImpeachVote, &item)
	default:
		return ErrUnknownKind
	}
}

func (n *Navigator) SelectForResults(item Item) error {
	if !item.valid() {
		return ErrUnknownKind
	}
	switch item.Kind {
	case KindElection:
		return n.open(ViewResults, &item)
	case KindPetition:
		return ErrWrongKind
	default:
		return ErrUnknownKind
	}
}

func (n *Navigator) OpenSetup() error       { return n.open(ViewSetup, nil) }
func (n *Navigator) OpenImpeachment() error { return n.open(ViewImpeachment, nil) }

// Back returns to the list and clears the selection.
func (n *Navigator) Back() {
	n.view = ViewList
	n.selected = nil
}

func (n *Navigator) open(v View, item *Item) error {
	if n.view != ViewList {
		return ErrFlowActive
	}
	n.view = v
	n.selected = item
	return nil
}
