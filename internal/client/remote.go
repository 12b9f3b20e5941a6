package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	model "task-manager.com/task-manager/internal/models"
)

type taskList struct {
	Count int             `json:"count"`
	Tasks json.RawMessage `json:"tasks"`
}

type supplierList struct {
	Count     int             `json:"count"`
	Suppliers json.RawMessage `json:"suppliers"`
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, err
	}

	var list taskList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	return model.DecodeTasks(list.Tasks)
}

func (c *Client) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	if err := c.requireSession(); err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodGet, "/suppliers", nil)
	if err != nil {
		return nil, err
	}

	var list supplierList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode supplier list: %w", err)
	}
	return model.DecodeSuppliers(list.Suppliers)
}

func (c *Client) CreateTask(ctx context.Context, in model.TaskInput) (model.Task, error) {
	if err := c.requireSession(); err != nil {
		return model.Task{}, err
	}
	data, err := c.do(ctx, http.MethodPost, "/tasks", in)
	if err != nil {
		return model.Task{}, err
	}
	return model.DecodeTask(data)
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch model.TaskPatch) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), patch)
	return err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil)
	return err
}

func (c *Client) CreateSupplier(ctx context.Context, in model.SupplierInput) (model.Supplier, error) {
	if err := c.requireSession(); err != nil {
		return model.Supplier{}, err
	}
	data, err := c.do(ctx, http.MethodPost, "/suppliers", in)
	if err != nil {
		return model.Supplier{}, err
	}
	return model.DecodeSupplier(data)
}

func (c *Client) UpdateSupplier(ctx context.Context, id string, patch model.SupplierPatch) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPatch, "/suppliers/"+url.PathEscape(id), patch)
	return err
}

func (c *Client) DeleteSupplier(ctx context.Context, id string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodDelete, "/suppliers/"+url.PathEscape(id), nil)
	return err
}
