package resource

import (
	"context"
	"fmt"
	"sync"
)

type item struct {
	ID    string
	Title string
}

func (i item) ResourceID() string { return i.ID }

type payload struct {
	Title string
}

// memClient is an in-memory Client backed by a slice. Hooks let tests fail
// or block individual calls.
type memClient struct {
	mu     sync.Mutex
	items  []item
	nextID int

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// gate, when set, blocks every call until a value is received.
	gate chan struct{}
	// entered receives a value when a call starts, before gate.
	entered chan string
}

func newMemClient(n int) *memClient {
	c := &memClient{}
	for i := 0; i < n; i++ {
		c.nextID++
		c.items = append(c.items, item{ID: fmt.Sprintf("id-%d", c.nextID), Title: fmt.Sprintf("Item %d", c.nextID)})
	}
	return c
}

func (c *memClient) wait(op string) {
	if c.entered != nil {
		c.entered <- op
	}
	if c.gate != nil {
		<-c.gate
	}
}

func (c *memClient) List(ctx context.Context, page, limit int) (Page[item], error) {
	c.wait("list")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls++
	if c.listErr != nil {
		return Page[item]{}, c.listErr
	}
	return SlicePage(c.items, page, limit), nil
}

func (c *memClient) Get(ctx context.Context, id string) (item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.items {
		if it.ID == id {
			return it, nil
		}
	}
	return item{}, NotFoundError("not found")
}

func (c *memClient) Create(ctx context.Context, p payload) (item, error) {
	c.wait("create")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.createCalls++
	if c.createErr != nil {
		return item{}, c.createErr
	}
	c.nextID++
	it := item{ID: fmt.Sprintf("id-%d", c.nextID), Title: p.Title}
	c.items = append(c.items, it)
	return it, nil
}

func (c *memClient) Update(ctx context.Context, id string, p payload) (item, error) {
	c.wait("update")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateCalls++
	if c.updateErr != nil {
		return item{}, c.updateErr
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Title = p.Title
			return c.items[i], nil
		}
	}
	return item{}, NotFoundError("not found")
}

func (c *memClient) Delete(ctx context.Context, id string) error {
	c.wait("delete")
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleteCalls++
	if c.deleteErr != nil {
		return c.deleteErr
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return nil
		}
	}
	return NotFoundError("not found")
}

func (c *memClient) counts() (list, create, update, del int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listCalls, c.createCalls, c.updateCalls, c.deleteCalls
}

var testLabels = Labels{Singular: "Category", Plural: "categories"}
