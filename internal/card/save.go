package card

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	ErrSaveInProgress = errors.New("card save already in progress")
	ErrNoPersister    = errors.New("card has no persister")
)

// Persister is the host record-management layer a card saves through.
type Persister interface {
	SaveCard(ctx context.Context, cardID string, body []byte) (json.RawMessage, error)
}

type SaveStatus string

const (
	SaveSuccess SaveStatus = "success"
	SaveError   SaveStatus = "error"
)

type SaveResult struct {
	Status   SaveStatus
	Response json.RawMessage
	Err      error
	Card     *Card
}

// PendingSave is a save that has been started but not yet sent. Do touches no
// card state, so it may run on another goroutine; the result must be handed
// back with FinishSave on the card's owning goroutine.
type PendingSave struct {
	CardID    string
	Body      []byte
	persister Persister
}

func (p PendingSave) Do(ctx context.Context) (json.RawMessage, error) {
	return p.persister.SaveCard(ctx, p.CardID, p.Body)
}

// BeginSave serializes the card and marks a save as in flight.
func (c *Card) BeginSave() (PendingSave, error) {
	if c.persister == nil {
		return PendingSave{}, ErrNoPersister
	}
	if !c.saving.CompareAndSwap(false, true) {
		return PendingSave{}, ErrSaveInProgress
	}
	body, err := json.Marshal(c.Serialize())
	if err != nil {
		c.saving.Store(false)
		return PendingSave{}, err
	}
	return PendingSave{CardID: c.ID(), Body: body, persister: c.persister}, nil
}

// FinishSave clears the in-flight flag and, on success, makes the sent body
// the new last saved snapshot.
func (c *Card) FinishSave(p PendingSave, resp json.RawMessage, err error) SaveResult {
	c.saving.Store(false)
	if err != nil {
		return SaveResult{Status: SaveError, Response: resp, Err: err, Card: c}
	}
	c.lastSaved = append([]byte(nil), p.Body...)
	c.changed()
	return SaveResult{Status: SaveSuccess, Response: resp, Card: c}
}

// Saving reports whether a save is in flight.
func (c *Card) Saving() bool {
	return c.saving.Load()
}

// Save persists the card and always invokes cb (when non-nil) with the result.
func (c *Card) Save(ctx context.Context, cb func(SaveResult)) error {
	p, err := c.BeginSave()
	if err != nil {
		res := SaveResult{Status: SaveError, Err: err, Card: c}
		if cb != nil {
			cb(res)
		}
		return err
	}
	resp, err := p.Do(ctx)
	res := c.FinishSave(p, resp, err)
	if cb != nil {
		cb(res)
	}
	return res.Err
}
