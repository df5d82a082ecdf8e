package mutate

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"resource-cards/internal/card"
)

// Result reports whether a mutation changed the tree and the card it touched.
type Result struct {
	Changed bool
	Card    *card.Card
}

func findCard(root *card.Card, cardID string) (*card.Card, *card.Card, error) {
	cardID = strings.TrimSpace(cardID)
	if root == nil || cardID == "" {
		return nil, nil, NotFoundError{Kind: "card", ID: cardID}
	}
	c, parent := root.Find(cardID)
	if c == nil {
		return nil, nil, NotFoundError{Kind: "card", ID: cardID}
	}
	return c, parent, nil
}

func clampIndex(i, n int) int {
	if i < 0 || i > n {
		return n
	}
	return i
}

// InsertCard builds a child card from data and inserts it under parentID at
// index (out-of-range appends). A missing cardid is assigned a new one.
func InsertCard(root *card.Card, parentID string, data map[string]json.RawMessage, index int) (Result, error) {
	parent, _, err := findCard(root, parentID)
	if err != nil {
		return Result{}, err
	}
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	var id string
	if raw, ok := data["cardid"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
		data["cardid"], _ = json.Marshal(id)
	}
	if existing, _ := root.Find(id); existing != nil {
		return Result{}, errors.New("card id already in tree: " + id)
	}
	child, err := parent.NewChild(data)
	if err != nil {
		return Result{}, err
	}
	if err := parent.Cards().Insert(clampIndex(index, parent.Cards().Len()), child); err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Card: child}, nil
}

// RemoveCard detaches a card (and its subtree) from its parent. The root
// cannot be removed.
func RemoveCard(root *card.Card, cardID string) (Result, error) {
	c, parent, err := findCard(root, cardID)
	if err != nil {
		return Result{}, err
	}
	if parent == nil {
		return Result{}, errors.New("cannot remove the root card")
	}
	idx := indexOf(parent, c)
	if _, err := parent.Cards().RemoveAt(idx); err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Card: c}, nil
}

// MoveCard moves a card under newParentID at index. An empty newParentID keeps
// the current parent.
func MoveCard(root *card.Card, cardID, newParentID string, index int) (Result, error) {
	c, parent, err := findCard(root, cardID)
	if err != nil {
		return Result{}, err
	}
	if parent == nil {
		return Result{}, errors.New("cannot move the root card")
	}
	target := parent
	if strings.TrimSpace(newParentID) != "" {
		target, _, err = findCard(root, newParentID)
		if err != nil {
			return Result{}, err
		}
	}
	if inner, _ := c.Find(target.ID()); inner != nil {
		return Result{}, ErrCycle
	}

	from := indexOf(parent, c)
	if target == parent {
		to := index
		if to < 0 || to >= parent.Cards().Len() {
			to = parent.Cards().Len() - 1
		}
		if to == from {
			return Result{Card: c}, nil
		}
		if err := parent.Cards().Move(from, to); err != nil {
			return Result{}, err
		}
		return Result{Changed: true, Card: c}, nil
	}

	if _, err := parent.Cards().RemoveAt(from); err != nil {
		return Result{}, err
	}
	if err := target.Cards().Insert(clampIndex(index, target.Cards().Len()), c); err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Card: c}, nil
}

// MoveWidget reorders a card's widgets.
func MoveWidget(root *card.Card, cardID string, from, to int) (Result, error) {
	c, _, err := findCard(root, cardID)
	if err != nil {
		return Result{}, err
	}
	if from == to {
		return Result{Card: c}, nil
	}
	if err := c.Widgets().Move(from, to); err != nil {
		return Result{}, err
	}
	return Result{Changed: true, Card: c}, nil
}

func SetCardName(root *card.Card, cardID, name string) (Result, error) {
	c, _, err := findCard(root, cardID)
	if err != nil {
		return Result{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Result{}, errors.New("missing name")
	}
	if c.Name().Defined() && c.Name().Get() == name {
		return Result{Card: c}, nil
	}
	c.Name().Set(name)
	return Result{Changed: true, Card: c}, nil
}

func indexOf(parent, c *card.Card) int {
	for i, k := range parent.Cards().Items() {
		if k == c {
			return i
		}
	}
	return -1
}
